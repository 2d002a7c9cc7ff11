//go:build testutil
// +build testutil

package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kmcheng/discusshub-backend/db/model"
	"github.com/kmcheng/discusshub-backend/store"
	"github.com/kmcheng/discusshub-backend/testutil/testdb"
	"gorm.io/gorm"
)

type fixture struct {
	h    *testdb.DBHandle
	lect *model.User
	s1   *model.User
	s2   *model.User
	g1   *model.Group
	g2   *model.Group
	d    *model.Discussion
}

func (f *fixture) db() *gorm.DB { return f.h.DB }

// setup seeds lecturer L owning groups G1{S1} and G2{S2} and a discussion
// over both.
func setup(t *testing.T) *fixture {
	t.Helper()
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(h.Close)

	f := &fixture{h: h}
	f.lect = seedUser(t, h.DB, "L", model.RoleLecturer)
	f.s1 = seedUser(t, h.DB, "S1", model.RoleStudent)
	f.s2 = seedUser(t, h.DB, "S2", model.RoleStudent)
	f.g1 = seedGroup(t, h.DB, f.lect, "G1", f.s1)
	f.g2 = seedGroup(t, h.DB, f.lect, "G2", f.s2)

	d, err := store.CreateDiscussion(h.DB, f.lect, store.DiscussionInput{
		Title:    "week 1",
		Content:  "introductions",
		GroupIDs: []uint{f.g1.ID, f.g2.ID},
	})
	if err != nil {
		t.Fatal(err)
	}
	f.d = d
	return f
}

func seedUser(t *testing.T, db *gorm.DB, name, role string) *model.User {
	t.Helper()
	u := &model.User{
		Email:       name + "@example.com",
		Displayname: name,
		Role:        role,
		Approved:    true,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatal(err)
	}
	return u
}

func seedGroup(t *testing.T, db *gorm.DB, creator *model.User, name string, members ...*model.User) *model.Group {
	t.Helper()
	g := &model.Group{
		Name:      name,
		CreatorID: creator.ID,
		Active:    true,
		Members:   members,
	}
	if err := db.Create(g).Error; err != nil {
		t.Fatal(err)
	}
	return g
}

func send(t *testing.T, f *fixture, sender *model.User, groupID *uint, content string, replyTo *uint) *model.Message {
	t.Helper()
	m, err := store.CreateMessage(f.db(), f.d, sender, groupID, store.CreateMessageInput{
		Content:   content,
		Type:      model.MsgTypeText,
		ReplyToID: replyTo,
	})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestListOrderingStable(t *testing.T) {
	f := setup(t)
	a := send(t, f, f.s1, &f.g1.ID, "a", nil)
	b := send(t, f, f.s1, &f.g1.ID, "b", nil)
	c := send(t, f, f.s1, &f.g1.ID, "c", nil)

	first, err := store.ListMessages(f.db(), f.d.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 3 {
		t.Fatalf("got %d messages, want 3", len(first))
	}
	for i, want := range []uint{a.ID, b.ID, c.ID} {
		if first[i].ID != want {
			t.Errorf("position %d: got id %d, want %d", i, first[i].ID, want)
		}
	}

	second, err := store.ListMessages(f.db(), f.d.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatal("two reads with no writes in between differ")
		}
	}
}

func TestGroupIsolation(t *testing.T) {
	f := setup(t)
	send(t, f, f.s1, &f.g1.ID, "hello", nil)

	// S2's group sees nothing
	other, err := store.ListMessages(f.db(), f.d.ID, &f.g2.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Fatalf("group 2 sees %d messages, want 0", len(other))
	}

	// the lecturer sees everything
	all, err := store.ListMessages(f.db(), f.d.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].Content != "hello" {
		t.Fatalf("unfiltered list = %+v, want [hello]", all)
	}
}

func TestUngroupedVisibleToAllGroups(t *testing.T) {
	f := setup(t)
	send(t, f, f.lect, nil, "announcement", nil)

	for _, gid := range []uint{f.g1.ID, f.g2.ID} {
		msgs, err := store.ListMessages(f.db(), f.d.ID, &gid)
		if err != nil {
			t.Fatal(err)
		}
		if len(msgs) != 1 || msgs[0].Content != "announcement" {
			t.Fatalf("group %d list = %+v, want [announcement]", gid, msgs)
		}
	}
}

func TestReplyRoundTrip(t *testing.T) {
	f := setup(t)
	m1 := send(t, f, f.s1, &f.g1.ID, "hello", nil)
	m2, err := store.CreateMessage(f.db(), f.d, f.s1, &f.g1.ID, store.CreateMessageInput{
		Content:   "hi back",
		Type:      model.MsgTypeText,
		ReplyToID: &m1.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if m2.ReplyTo == nil || m2.ReplyTo.ID != m1.ID {
		t.Fatalf("reply preview not resolved: %+v", m2.ReplyTo)
	}
	if m2.ReplyTo.Sender == nil || m2.ReplyTo.Sender.Displayname != "S1" {
		t.Error("reply preview sender not populated")
	}

	msgs, err := store.ListMessages(f.db(), f.d.ID, &f.g1.ID)
	if err != nil {
		t.Fatal(err)
	}
	last := msgs[len(msgs)-1]
	if last.ReplyTo == nil || last.ReplyTo.ID != m1.ID || last.ReplyTo.Content != "hello" {
		t.Fatalf("listed reply preview = %+v", last.ReplyTo)
	}
}

func TestReplyValidation(t *testing.T) {
	f := setup(t)

	if _, err := store.CreateMessage(f.db(), f.d, f.s1, &f.g1.ID, store.CreateMessageInput{
		Content: "x", Type: model.MsgTypeText, ReplyToID: ptr(99999),
	}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing target: got %v, want ErrNotFound", err)
	}

	// a second discussion with its own message
	other, err := store.CreateDiscussion(f.db(), f.lect, store.DiscussionInput{
		Title: "week 2", Content: "follow-up", GroupIDs: []uint{f.g1.ID},
	})
	if err != nil {
		t.Fatal(err)
	}
	foreign, err := store.CreateMessage(f.db(), other, f.s1, &f.g1.ID, store.CreateMessageInput{
		Content: "elsewhere", Type: model.MsgTypeText,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateMessage(f.db(), f.d, f.s1, &f.g1.ID, store.CreateMessageInput{
		Content: "x", Type: model.MsgTypeText, ReplyToID: &foreign.ID,
	}); !errors.Is(err, store.ErrInvalidReference) {
		t.Errorf("cross-discussion target: got %v, want ErrInvalidReference", err)
	}
}

func TestEditOwnership(t *testing.T) {
	f := setup(t)
	m := send(t, f, f.s1, &f.g1.ID, "original", nil)

	if _, err := store.EditMessage(f.db(), m.ID, f.s2, "hijacked"); !errors.Is(err, store.ErrForbidden) {
		t.Errorf("non-sender edit: got %v, want ErrForbidden", err)
	}

	edited, err := store.EditMessage(f.db(), m.ID, f.s1, "fixed")
	if err != nil {
		t.Fatal(err)
	}
	if !edited.Edited || edited.Content != "fixed" {
		t.Errorf("edit result = (%q, edited=%t)", edited.Content, edited.Edited)
	}
}

func TestDeleteLeavesDanglingReply(t *testing.T) {
	f := setup(t)
	m1 := send(t, f, f.s1, &f.g1.ID, "hello", nil)
	m2 := send(t, f, f.s1, &f.g1.ID, "re: hello", &m1.ID)

	if err := store.DeleteMessage(f.db(), m1.ID, f.s2); !errors.Is(err, store.ErrForbidden) {
		t.Errorf("non-sender delete: got %v, want ErrForbidden", err)
	}
	if err := store.DeleteMessage(f.db(), m1.ID, f.s1); err != nil {
		t.Fatal(err)
	}

	msgs, err := store.ListMessages(f.db(), f.d.ID, &f.g1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].ID != m2.ID {
		t.Fatalf("list after delete = %+v", msgs)
	}
	if msgs[0].ReplyToID == nil || *msgs[0].ReplyToID != m1.ID {
		t.Error("reply_to_id lost after target deletion")
	}
	if msgs[0].ReplyTo != nil {
		t.Error("deleted target still resolves to a preview")
	}
}

func TestValidation(t *testing.T) {
	f := setup(t)
	cases := []store.CreateMessageInput{
		{Content: "", Type: model.MsgTypeText},
		{Content: "x", Type: "gif"},
		{Type: model.MsgTypeFile},
	}
	for _, in := range cases {
		if _, err := store.CreateMessage(f.db(), f.d, f.s1, &f.g1.ID, in); !errors.Is(err, store.ErrValidation) {
			t.Errorf("input %+v: got %v, want ErrValidation", in, err)
		}
	}
}

func TestAppendReadOncePerUser(t *testing.T) {
	f := setup(t)
	m := send(t, f, f.s1, &f.g1.ID, "hello", nil)

	if err := store.AppendRead(f.db(), m.ID, f.s2.ID); err != nil {
		t.Fatal(err)
	}
	if err := store.AppendRead(f.db(), m.ID, f.s2.ID); err != nil {
		t.Fatal(err)
	}
	var count int64
	if err := f.db().Model(&model.MessageRead{}).Where("message_id = ?", m.ID).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("got %d receipts, want 1", count)
	}

	if err := store.AppendRead(f.db(), 99999, f.s2.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing message: got %v, want ErrNotFound", err)
	}
}

func ptr(v uint) *uint { return &v }
