//go:build testutil
// +build testutil

package store_test

import (
	"errors"
	"testing"

	"github.com/kmcheng/discusshub-backend/db/model"
	"github.com/kmcheng/discusshub-backend/store"
)

func TestGetDiscussionGroupOrder(t *testing.T) {
	f := setup(t)

	d, err := store.GetDiscussion(f.db(), f.d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(d.Groups))
	}
	if d.Groups[0].ID != f.g1.ID || d.Groups[1].ID != f.g2.ID {
		t.Errorf("group order = (%d, %d), want (%d, %d)",
			d.Groups[0].ID, d.Groups[1].ID, f.g1.ID, f.g2.ID)
	}
	if len(d.Groups[0].Members) != 1 || d.Groups[0].Members[0].ID != f.s1.ID {
		t.Error("rosters not loaded with the groups")
	}

	if _, err := store.GetDiscussion(f.db(), 99999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing discussion: got %v, want ErrNotFound", err)
	}
}

func TestCreateDiscussionValidation(t *testing.T) {
	f := setup(t)

	if _, err := store.CreateDiscussion(f.db(), f.lect, store.DiscussionInput{
		Title: "", Content: "x", GroupIDs: []uint{f.g1.ID},
	}); !errors.Is(err, store.ErrValidation) {
		t.Errorf("missing title: got %v, want ErrValidation", err)
	}
	if _, err := store.CreateDiscussion(f.db(), f.lect, store.DiscussionInput{
		Title: "x", Content: "x",
	}); !errors.Is(err, store.ErrValidation) {
		t.Errorf("no groups: got %v, want ErrValidation", err)
	}
}

func TestCreateDiscussionForeignGroupRejected(t *testing.T) {
	f := setup(t)
	rival := seedUser(t, f.db(), "L2", model.RoleLecturer)
	foreign := seedGroup(t, f.db(), rival, "G3", f.s2)

	if _, err := store.CreateDiscussion(f.db(), f.lect, store.DiscussionInput{
		Title: "x", Content: "x", GroupIDs: []uint{f.g1.ID, foreign.ID},
	}); !errors.Is(err, store.ErrInvalidReference) {
		t.Errorf("foreign group: got %v, want ErrInvalidReference", err)
	}
}

func TestUpdateDiscussion(t *testing.T) {
	f := setup(t)

	if _, err := store.UpdateDiscussion(f.db(), f.d.ID, f.s1, store.DiscussionInput{
		Title: "x", Content: "x", GroupIDs: []uint{f.g1.ID},
	}); !errors.Is(err, store.ErrForbidden) {
		t.Errorf("non-creator update: got %v, want ErrForbidden", err)
	}

	// creator reorders the groups and drops one
	d, err := store.UpdateDiscussion(f.db(), f.d.ID, f.lect, store.DiscussionInput{
		Title:    "week 1 (revised)",
		Content:  "introductions",
		GroupIDs: []uint{f.g2.ID},
	})
	if err != nil {
		t.Fatal(err)
	}
	if d.Title != "week 1 (revised)" {
		t.Errorf("title = %q", d.Title)
	}
	if len(d.Groups) != 1 || d.Groups[0].ID != f.g2.ID {
		t.Fatalf("groups after update = %+v", d.Groups)
	}
}

func TestDeleteDiscussionCascades(t *testing.T) {
	f := setup(t)
	send(t, f, f.s1, &f.g1.ID, "hello", nil)

	if err := store.DeleteDiscussion(f.db(), f.d.ID, f.s1); !errors.Is(err, store.ErrForbidden) {
		t.Errorf("non-creator delete: got %v, want ErrForbidden", err)
	}
	if err := store.DeleteDiscussion(f.db(), f.d.ID, f.lect); err != nil {
		t.Fatal(err)
	}

	if _, err := store.GetDiscussion(f.db(), f.d.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("deleted discussion still loads: %v", err)
	}
	msgs, err := store.ListMessages(f.db(), f.d.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Errorf("%d messages survived the delete", len(msgs))
	}
	var joins int64
	if err := f.db().Model(&model.DiscussionGroup{}).Where("discussion_id = ?", f.d.ID).Count(&joins).Error; err != nil {
		t.Fatal(err)
	}
	if joins != 0 {
		t.Errorf("%d group rows survived the delete", joins)
	}
}

func TestListDiscussionsFor(t *testing.T) {
	f := setup(t)

	// a second discussion over G2 only, so S1 should not see it
	if _, err := store.CreateDiscussion(f.db(), f.lect, store.DiscussionInput{
		Title: "week 2", Content: "follow-up", GroupIDs: []uint{f.g2.ID},
	}); err != nil {
		t.Fatal(err)
	}

	lectList, err := store.ListDiscussionsFor(f.db(), f.lect)
	if err != nil {
		t.Fatal(err)
	}
	if len(lectList) != 2 {
		t.Errorf("creator sees %d discussions, want 2", len(lectList))
	}

	s1List, err := store.ListDiscussionsFor(f.db(), f.s1)
	if err != nil {
		t.Fatal(err)
	}
	if len(s1List) != 1 || s1List[0].ID != f.d.ID {
		t.Fatalf("S1 sees %+v, want only the first discussion", s1List)
	}

	s2List, err := store.ListDiscussionsFor(f.db(), f.s2)
	if err != nil {
		t.Fatal(err)
	}
	if len(s2List) != 2 {
		t.Errorf("S2 sees %d discussions, want 2", len(s2List))
	}
}
