package domain

type ScheduleKind string

const (
	ScheduleWeekly     ScheduleKind = "WEEKLY"
	ScheduleMonthlyDay ScheduleKind = "MONTHLY"
	ScheduleDeadline   ScheduleKind = "DEADLINE"
	ScheduleOnDate     ScheduleKind = "DATE"
	ScheduleDateRange  ScheduleKind = "RANGE"
)

// ValidScheduleKinds is the canonical set of accepted schedule kind strings.
var ValidScheduleKinds = map[ScheduleKind]bool{
	ScheduleWeekly:     true,
	ScheduleMonthlyDay: true,
	ScheduleDeadline:   true,
	ScheduleOnDate:     true,
	ScheduleDateRange:  true,
}

type EntryType string

const (
	EntryIncome  EntryType = "INCOME"
	EntryExpense EntryType = "EXPENSE"
)

type InvestmentKind string

const (
	InvestmentDomestic InvestmentKind = "DOMESTIC"
	InvestmentForeign  InvestmentKind = "FOREIGN"
)

type SavingsKind string

const (
	SavingsDeposit     SavingsKind = "DEPOSIT"
	SavingsInstallment SavingsKind = "INSTALLMENT"
)

// Mode is the operating mode of the data store.
type Mode string

const (
	ModeSolo  Mode = "solo"
	ModeGroup Mode = "group"
)

// SyncStatus is the group lifecycle state.
type SyncStatus string

const (
	SyncDisconnected SyncStatus = "disconnected"
	SyncConnecting   SyncStatus = "connecting"
	SyncConnected    SyncStatus = "connected"
)
