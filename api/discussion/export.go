package discussion

import (
	"fmt"
	"net/http"

	"github.com/kmcheng/discusshub-backend/db"
	"github.com/kmcheng/discusshub-backend/db/model"
	"github.com/kmcheng/discusshub-backend/store"
	"github.com/kmcheng/discusshub-backend/visibility"
	"github.com/xuri/excelize/v2"
)

// export writes an xlsx transcript of the viewer's visible messages in
// canonical creation order. It consumes ListMessages only, same as any
// reporting client.
func (h *Handlers) export(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	d := r.Context().Value("discussion").(*model.Discussion)

	var filter *uint
	if !visibility.IsCreator(d, u) {
		gid, ok := visibility.ResolveGroup(d, u)
		if !ok {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		filter = &gid
	}
	msgs, err := store.ListMessages(db.GetDB(r.Context()), d.ID, filter)
	if err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	groupNames := make(map[uint]string, len(d.Groups))
	for _, g := range d.Groups {
		groupNames[g.ID] = g.Name
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Transcript"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	header := []string{"Time", "Sender", "Group", "Type", "Content", "Edited"}
	for col, v := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellStr(sheet, cell, v)
	}
	f.SetCellStyle(sheet, "A1", "F1", bold)

	for row, m := range msgs {
		group := "all"
		if m.GroupID != nil {
			group = groupNames[*m.GroupID]
		}
		sender := ""
		if m.Sender != nil {
			sender = m.Sender.Displayname
		}
		content := m.Content
		if m.Type == model.MsgTypeFile {
			content = m.FileURL
		}
		vals := []string{
			m.CreatedAt.Format("2006-01-02 15:04:05"),
			sender,
			group,
			m.Type,
			content,
			fmt.Sprintf("%t", m.Edited),
		}
		for col, v := range vals {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellStr(sheet, cell, v)
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=discussion-%d.xlsx", d.ID))
	if err := f.Write(w); err != nil {
		h.logger.Println(err)
	}
}
