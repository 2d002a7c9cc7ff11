// Package visibility holds the group-scoped read rules: which group a user
// acts as within a discussion, and which stored messages they may see. All
// functions are pure computations over already-loaded models.
package visibility

import "github.com/kmcheng/discusshub-backend/db/model"

// ResolveGroup returns the id of u's effective group within d, iterating
// d.Groups in stored order and taking the first roster containing u. The
// creating lecturer, and any user in none of the groups, resolves to no
// group (ok == false); callers must distinguish the two via IsCreator.
func ResolveGroup(d *model.Discussion, u *model.User) (uint, bool) {
	if IsCreator(d, u) {
		return 0, false
	}
	for _, g := range d.Groups {
		if g.HasMember(u.ID) {
			return g.ID, true
		}
	}
	return 0, false
}

// IsCreator reports whether u is the lecturer who owns d.
func IsCreator(d *model.Discussion, u *model.User) bool {
	return u.Role == model.RoleLecturer && u.ID == d.CreatorID
}

// FilterForViewer narrows msgs to what viewer may see: everything for the
// creator, nothing for a viewer in no associated group, and otherwise the
// viewer's group's messages plus the ungrouped (lecturer-authored) ones.
func FilterForViewer(d *model.Discussion, viewer *model.User, msgs []model.Message) []model.Message {
	out := make([]model.Message, 0, len(msgs))
	if IsCreator(d, viewer) {
		return append(out, msgs...)
	}
	gid, ok := ResolveGroup(d, viewer)
	if !ok {
		return out
	}
	for _, m := range msgs {
		if Visible(&m, gid) {
			out = append(out, m)
		}
	}
	return out
}

// Visible reports whether a message tagged with m.GroupID may be read by a
// viewer resolved to gid. Ungrouped messages are visible to every group.
func Visible(m *model.Message, gid uint) bool {
	return m.GroupID == nil || *m.GroupID == gid
}
