package service

import (
	"context"
	"encoding/json"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// FCMService sends push notifications via Firebase Cloud Messaging.
type FCMService struct {
	client *messaging.Client
	log    *zap.Logger
}

// NewFCMService creates an FCM service. Returns nil if Firebase is not configured.
func NewFCMService(serviceAccountPath string, log *zap.Logger) *FCMService {
	if serviceAccountPath == "" {
		return nil
	}
	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		log.Error("init firebase app", zap.Error(err))
		return nil
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		log.Error("init firebase messaging", zap.Error(err))
		return nil
	}
	return &FCMService{client: client, log: log}
}

// Send pushes one notification to a device token.
func (s *FCMService) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if s == nil || token == "" {
		return nil
	}
	msg := &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data:  data,
		Token: token,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}
	if _, err := s.client.Send(ctx, msg); err != nil {
		s.log.Warn("fcm send failed", zap.Error(err))
		return err
	}
	return nil
}

// IsUnregistered reports whether err means the token is no longer valid.
func (s *FCMService) IsUnregistered(err error) bool {
	return messaging.IsUnregistered(err)
}

// stringData converts a payload to the string map FCM requires.
func stringData(notifType string, data map[string]interface{}) map[string]string {
	out := make(map[string]string, len(data)+1)
	out["type"] = notifType
	for k, v := range data {
		switch val := v.(type) {
		case string:
			out[k] = val
		case fmt.Stringer:
			out[k] = val.String()
		case int, int64, uint:
			out[k] = fmt.Sprintf("%d", val)
		case bool:
			out[k] = fmt.Sprintf("%t", val)
		default:
			b, _ := json.Marshal(v)
			out[k] = string(b)
		}
	}
	return out
}
