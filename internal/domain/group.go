package domain

import (
	cryptorand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"
)

// GroupCodeAlphabet excludes the easily confused 0/O and 1/I.
const GroupCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GroupCodeLength is the number of characters in a group code.
const GroupCodeLength = 6

var ErrInvalidGroupCode = errors.New("invalid group code")

// Group is a shared dataset between a small set of members.
type Group struct {
	Code         string            `json:"code"`
	Name         string            `json:"name,omitempty"`
	Members      []string          `json:"members"`
	MemberNames  map[string]string `json:"memberNames,omitempty"`
	MemberColors map[string]string `json:"memberColors,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// HasMember reports whether uid belongs to the group.
func (g Group) HasMember(uid string) bool {
	return slices.Contains(g.Members, uid)
}

// MemberName returns the display name for uid, or a short fallback.
func (g Group) MemberName(uid string) string {
	if n := g.MemberNames[uid]; n != "" {
		return n
	}
	if len(uid) > 6 {
		return uid[:6]
	}
	return uid
}

// Clone returns a deep copy.
func (g Group) Clone() Group {
	out := g
	out.Members = slices.Clone(g.Members)
	out.MemberNames = cloneStringMap(g.MemberNames)
	out.MemberColors = cloneStringMap(g.MemberColors)
	return out
}

// GenerateGroupCode draws GroupCodeLength characters from GroupCodeAlphabet,
// one byte per character. The alphabet size divides 256 so every character
// is equally likely. A nil reader uses crypto/rand.
func GenerateGroupCode(r io.Reader) (string, error) {
	if r == nil {
		r = cryptorand.Reader
	}
	buf := make([]byte, GroupCodeLength)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("generating group code: %w", err)
	}
	for i, b := range buf {
		buf[i] = GroupCodeAlphabet[int(b)%len(GroupCodeAlphabet)]
	}
	return string(buf), nil
}

// NormalizeGroupCode upper-cases and trims user input, then validates it.
func NormalizeGroupCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != GroupCodeLength {
		return "", fmt.Errorf("%w: %q must be %d characters", ErrInvalidGroupCode, code, GroupCodeLength)
	}
	for _, c := range code {
		if !strings.ContainsRune(GroupCodeAlphabet, c) {
			return "", fmt.Errorf("%w: %q contains %q", ErrInvalidGroupCode, code, c)
		}
	}
	return code, nil
}

// MemberPalette is the palette assigned to members in join order.
var MemberPalette = []string{"#83a598", "#d3869b", "#fabd2f", "#8ec07c", "#fe8019", "#b8bb26"}

// NextMemberColor picks the first palette color not used by the group.
func (g Group) NextMemberColor() string {
	for _, c := range MemberPalette {
		used := false
		for _, have := range g.MemberColors {
			if have == c {
				used = true
				break
			}
		}
		if !used {
			return c
		}
	}
	return MemberPalette[len(g.Members)%len(MemberPalette)]
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
