package cli

import (
	"testing"

	"github.com/alexanderramin/hearth/internal/docstore"
	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/alexanderramin/hearth/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup_DisabledWithoutRemote(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "group", "create")
	require.ErrorIs(t, err, store.ErrGroupsDisabled)
	assert.Contains(t, err.Error(), "HEARTH_REMOTE_URL")

	out, err := executeCmd(t, app, "group", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "SOLO")
	assert.Contains(t, out, "Not in a group")
}

func TestGroup_CreateStatusLeave(t *testing.T) {
	mem := docstore.NewMemory()
	app := groupTestApp(t, mem, "me")
	_, err := executeCmd(t, app, "budget", "add", "점심", "9000")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "group", "create", "--name", "우리집", "--as", "민지")
	require.NoError(t, err)
	code := app.Store.Snapshot().GroupCode
	require.NotEmpty(t, code)
	assert.Contains(t, out, "Created group "+code)
	assert.Equal(t, domain.ModeGroup, app.Store.Mode())
	assert.Len(t, app.Store.Snapshot().Budgets, 1, "local entries are uploaded to the group")

	out, err = executeCmd(t, app, "group", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "GROUP")
	assert.Contains(t, out, "CONNECTED")
	assert.Contains(t, out, "우리집")
	assert.Contains(t, out, "민지 (you)")

	_, err = executeCmd(t, app, "group", "create")
	assert.ErrorIs(t, err, store.ErrAlreadyInGroup)

	out, err = executeCmd(t, app, "group", "leave")
	require.NoError(t, err)
	assert.Contains(t, out, "Left group "+code)
	assert.Equal(t, domain.ModeSolo, app.Store.Mode())
	assert.Len(t, app.Store.Snapshot().Budgets, 1, "own entries come home")

	_, err = executeCmd(t, app, "group", "leave")
	assert.ErrorIs(t, err, store.ErrNotInGroup)
}

func TestGroup_JoinSharesData(t *testing.T) {
	mem := docstore.NewMemory()
	owner := groupTestApp(t, mem, "owner")
	_, err := executeCmd(t, owner, "group", "create", "--as", "엄마")
	require.NoError(t, err)
	_, err = executeCmd(t, owner, "budget", "add", "장보기", "52000")
	require.NoError(t, err)
	code := owner.Store.Snapshot().GroupCode

	member := groupTestApp(t, mem, "kid")
	_, err = executeCmd(t, member, "group", "join", "bad")
	assert.ErrorIs(t, err, domain.ErrInvalidGroupCode)

	out, err := executeCmd(t, member, "group", "join", code, "--as", "지우")
	require.NoError(t, err)
	assert.Contains(t, out, "Joined")

	out, err = executeCmd(t, member, "budget", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "장보기")
	assert.Contains(t, out, "엄마")

	out, err = executeCmd(t, member, "account", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "OWNER")

	_, err = executeCmd(t, member, "account", "set", domain.DefaultAccount, "--initial", "1")
	assert.ErrorIs(t, err, errNotYourAccount)
}

func TestGroup_Profile(t *testing.T) {
	mem := docstore.NewMemory()
	app := groupTestApp(t, mem, "me")
	_, err := executeCmd(t, app, "group", "create", "--as", "민지")
	require.NoError(t, err)

	_, err = executeCmd(t, app, "group", "profile", "--color", "#000000")
	assert.Error(t, err)

	_, err = executeCmd(t, app, "group", "profile", "--as", "엄마", "--color", domain.MemberPalette[2])
	require.NoError(t, err)
	snap := app.Store.Snapshot()
	assert.Equal(t, "엄마", snap.DisplayName)
	assert.Equal(t, domain.MemberPalette[2], snap.Group.MemberColors["me"])
}
