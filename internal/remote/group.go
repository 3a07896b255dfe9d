package remote

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/alexanderramin/hearth/internal/docstore"
	"github.com/alexanderramin/hearth/internal/domain"
)

func groupDocPath(code string) string {
	return docstore.CollectionPath(code, CollectionMeta)
}

// CreateGroup registers a new group with the current identity as its only
// member. Candidate codes are checked against the store and regenerated on
// collision, up to MaxCodeAttempts times. The gateway is not bound to the
// new code.
func (g *Gateway) CreateGroup(ctx context.Context, name, displayName string) (domain.Group, error) {
	uid, err := g.Identity(ctx)
	if err != nil {
		return domain.Group{}, err
	}

	code, err := g.unusedCode(ctx)
	if err != nil {
		return domain.Group{}, err
	}

	grp := domain.Group{
		Code:         code,
		Name:         name,
		Members:      []string{uid},
		MemberNames:  map[string]string{},
		MemberColors: map[string]string{uid: domain.MemberPalette[0]},
		CreatedAt:    g.now().UTC(),
	}
	if displayName != "" {
		grp.MemberNames[uid] = displayName
	}
	f, err := groupFields(grp)
	if err != nil {
		return domain.Group{}, err
	}
	if err := g.store.Set(ctx, groupDocPath(code), GroupDocID, f); err != nil {
		return domain.Group{}, fmt.Errorf("creating group: %w", err)
	}
	g.log.Info().Str("code", code).Msg("group created")
	return grp, nil
}

func (g *Gateway) unusedCode(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= MaxCodeAttempts; attempt++ {
		code, err := domain.GenerateGroupCode(g.rand)
		if err != nil {
			return "", err
		}
		_, err = g.store.Get(ctx, groupDocPath(code), GroupDocID)
		if errors.Is(err, docstore.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking group code: %w", err)
		}
		g.log.Debug().Str("code", code).Int("attempt", attempt).Msg("group code taken")
	}
	return "", ErrCodeExhausted
}

// FetchGroup reads a group document.
func (g *Gateway) FetchGroup(ctx context.Context, code string) (domain.Group, error) {
	doc, err := g.store.Get(ctx, groupDocPath(code), GroupDocID)
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.Group{}, fmt.Errorf("%s: %w", code, ErrGroupNotFound)
	}
	if err != nil {
		return domain.Group{}, fmt.Errorf("fetching group %s: %w", code, err)
	}
	return groupFromDoc(doc)
}

// JoinGroup adds the current identity to the group with the given code.
// Joining a group one already belongs to only refreshes the display name.
func (g *Gateway) JoinGroup(ctx context.Context, code, displayName string) (domain.Group, error) {
	uid, err := g.Identity(ctx)
	if err != nil {
		return domain.Group{}, err
	}
	code, err = domain.NormalizeGroupCode(code)
	if err != nil {
		return domain.Group{}, err
	}
	grp, err := g.FetchGroup(ctx, code)
	if err != nil {
		return domain.Group{}, err
	}

	grp = grp.Clone()
	if grp.MemberNames == nil {
		grp.MemberNames = map[string]string{}
	}
	if grp.MemberColors == nil {
		grp.MemberColors = map[string]string{}
	}
	if !grp.HasMember(uid) {
		grp.Members = append(grp.Members, uid)
		grp.MemberColors[uid] = grp.NextMemberColor()
	}
	if displayName != "" {
		grp.MemberNames[uid] = displayName
	}
	if err := g.writeMembers(ctx, grp); err != nil {
		return domain.Group{}, err
	}
	g.log.Info().Str("code", code).Msg("joined group")
	return grp, nil
}

// LeaveGroup removes the current identity from the active group. The last
// member to leave deletes the group document.
func (g *Gateway) LeaveGroup(ctx context.Context) error {
	code, uid, err := g.scope(ctx)
	if err != nil {
		return err
	}
	grp, err := g.FetchGroup(ctx, code)
	if err != nil {
		return err
	}
	grp = grp.Clone()
	grp.Members = slices.DeleteFunc(grp.Members, func(m string) bool { return m == uid })
	delete(grp.MemberNames, uid)
	delete(grp.MemberColors, uid)

	if len(grp.Members) == 0 {
		if err := g.store.Delete(ctx, groupDocPath(code), GroupDocID); err != nil {
			return fmt.Errorf("deleting group %s: %w", code, err)
		}
		return nil
	}
	return g.writeMembers(ctx, grp)
}

// UpdateMember changes how the current identity appears to the group.
// Empty values are left unchanged.
func (g *Gateway) UpdateMember(ctx context.Context, displayName, color string) error {
	code, uid, err := g.scope(ctx)
	if err != nil {
		return err
	}
	grp, err := g.FetchGroup(ctx, code)
	if err != nil {
		return err
	}
	grp = grp.Clone()
	if grp.MemberNames == nil {
		grp.MemberNames = map[string]string{}
	}
	if grp.MemberColors == nil {
		grp.MemberColors = map[string]string{}
	}
	if displayName != "" {
		grp.MemberNames[uid] = displayName
	}
	if color != "" {
		grp.MemberColors[uid] = color
	}
	return g.writeMembers(ctx, grp)
}

func (g *Gateway) writeMembers(ctx context.Context, grp domain.Group) error {
	members := make([]any, len(grp.Members))
	for i, m := range grp.Members {
		members[i] = m
	}
	f := docstore.Fields{
		"members":      members,
		"memberNames":  stringMap(grp.MemberNames),
		"memberColors": stringMap(grp.MemberColors),
	}
	if err := g.store.Merge(ctx, groupDocPath(grp.Code), GroupDocID, f); err != nil {
		return fmt.Errorf("updating group %s: %w", grp.Code, err)
	}
	return nil
}

func stringMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
