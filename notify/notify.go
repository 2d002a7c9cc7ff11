// Package notify sends best-effort push notifications for activity a user
// missed while disconnected. Failures are logged and swallowed; the durable
// write already succeeded by the time this runs.
package notify

import (
	"context"
	"log"

	"github.com/kmcheng/discusshub-backend/db"
	"github.com/kmcheng/discusshub-backend/db/model"
	"github.com/kmcheng/discusshub-backend/presence"
	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
)

var client = expo.NewPushClient(nil)

// MessageCreated pushes m to every offline participant who may see it: the
// members of its snapshot group (every group when untagged), plus the
// discussion's creator.
func MessageCreated(ctx context.Context, logger *log.Logger, d *model.Discussion, m *model.Message) {
	seen := map[uint]bool{m.SenderID: true}
	for _, g := range d.Groups {
		if m.GroupID != nil && g.ID != *m.GroupID {
			continue
		}
		for _, member := range g.Members {
			if seen[member.ID] {
				continue
			}
			seen[member.ID] = true
			pushIfOffline(ctx, logger, member.ID, d, m)
		}
	}
	if !seen[d.CreatorID] {
		pushIfOffline(ctx, logger, d.CreatorID, d, m)
	}
}

func pushIfOffline(ctx context.Context, logger *log.Logger, uid uint, d *model.Discussion, m *model.Message) {
	online, err := presence.IsOnline(ctx, uid)
	if err != nil {
		logger.Println(err)
		return
	}
	if online {
		return
	}
	var sessions []model.Session
	if err := db.GetDB(ctx).Where("user_id = ?", uid).Find(&sessions).Error; err != nil {
		logger.Println(err)
		return
	}
	body := m.Content
	if m.Type == model.MsgTypeFile {
		body = m.FileName
	}
	for _, s := range sessions {
		if s.ExpoPushToken == "" {
			continue
		}
		token, err := expo.NewExponentPushToken(s.ExpoPushToken)
		if err != nil {
			continue
		}
		resp, err := client.Publish(&expo.PushMessage{
			To:    []expo.ExponentPushToken{token},
			Title: d.Title,
			Body:  body,
			Sound: "default",
		})
		if err != nil {
			logger.Println(err)
			continue
		}
		if err := resp.ValidateResponse(); err != nil {
			logger.Println(err)
		}
	}
}
