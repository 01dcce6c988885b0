package services

import (
	"context"

	"firebase.google.com/go/messaging"
)

// Messenger abstracts the push transport so dispatch logic can be exercised
// without FCM. SendMulticast returns the tokens that failed.
type Messenger interface {
	Send(ctx context.Context, token string, p Payload) error
	SendMulticast(ctx context.Context, tokens []string, p Payload) (failed []string, err error)
}

// FCMMessenger sends through the Firebase Admin messaging client.
type FCMMessenger struct {
	client *messaging.Client
}

func NewFCMMessenger(client *messaging.Client) *FCMMessenger {
	return &FCMMessenger{client: client}
}

func (m *FCMMessenger) Send(ctx context.Context, token string, p Payload) error {
	_, err := m.client.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: p.Title,
			Body:  p.Body,
		},
		Data: p.Data,
	})
	return err
}

func (m *FCMMessenger) SendMulticast(ctx context.Context, tokens []string, p Payload) ([]string, error) {
	resp, err := m.client.SendMulticast(ctx, &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: p.Title,
			Body:  p.Body,
		},
		Data: p.Data,
	})
	if err != nil {
		return tokens, err
	}

	var failed []string
	for i, r := range resp.Responses {
		if !r.Success {
			failed = append(failed, tokens[i])
		}
	}
	return failed, nil
}
