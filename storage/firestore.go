package storage

import (
	"context"
	"fmt"
	"time"

	"pharmalync/model"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	otpCollection     = "secure_otps"
	paymentCollection = "payments"
	tokenCollection   = "refreshTokens"
)

// FirestoreStore implements Store on Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) CreateOTP(ctx context.Context, rec *model.OTPRecord) error {
	_, err := s.client.Collection(otpCollection).Doc(rec.ID).Set(ctx, rec)
	return err
}

// GetActiveOTP returns the newest unused record for a payment. Used and
// expired records stay in the collection for audit, so the isUsed filter is
// what narrows the query; "never issued" and "already used" are
// indistinguishable here and both surface as ErrNotFound.
func (s *FirestoreStore) GetActiveOTP(ctx context.Context, paymentID string) (*model.OTPRecord, error) {
	iter := s.client.Collection(otpCollection).
		Where("paymentId", "==", paymentID).
		Where("isUsed", "==", false).
		Documents(ctx)
	defer iter.Stop()

	var newest *model.OTPRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var rec model.OTPRecord
		if err := doc.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("failed to parse OTP record: %w", err)
		}
		if newest == nil || rec.CreatedAt.After(newest.CreatedAt) {
			newest = &rec
		}
	}

	if newest == nil {
		return nil, fmt.Errorf("no active OTP for payment %s: %w", paymentID, model.ErrNotFound)
	}
	return newest, nil
}

// InvalidateActiveOTPs retires every unused record for a payment without
// consuming it: isUsed flips so the records drop out of active queries, but
// usedAt stays unset and supersededAt records when they were retired.
func (s *FirestoreStore) InvalidateActiveOTPs(ctx context.Context, paymentID string, at time.Time) (int, error) {
	iter := s.client.Collection(otpCollection).
		Where("paymentId", "==", paymentID).
		Where("isUsed", "==", false).
		Documents(ctx)
	defer iter.Stop()

	batch := s.client.Batch()
	count := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, err
		}
		batch.Update(doc.Ref, []firestore.Update{
			{Path: "isUsed", Value: true},
			{Path: "superseded", Value: true},
			{Path: "supersededAt", Value: at},
		})
		count++
	}

	if count == 0 {
		return 0, nil
	}
	if _, err := batch.Commit(ctx); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *FirestoreStore) CreatePayment(ctx context.Context, p *model.Payment) error {
	_, err := s.client.Collection(paymentCollection).Doc(p.PaymentID).Set(ctx, p)
	return err
}

func (s *FirestoreStore) GetPayment(ctx context.Context, paymentID string) (*model.Payment, error) {
	doc, err := s.client.Collection(paymentCollection).Doc(paymentID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("payment %s: %w", paymentID, model.ErrNotFound)
		}
		return nil, err
	}

	var p model.Payment
	if err := doc.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to parse payment: %w", err)
	}
	return &p, nil
}

func (s *FirestoreStore) UpdatePaymentState(ctx context.Context, paymentID string, state model.PaymentState, at time.Time) error {
	updates := []firestore.Update{{Path: "state", Value: string(state)}}
	if state == model.PaymentCompleted {
		updates = append(updates, firestore.Update{Path: "completedAt", Value: at})
	}
	_, err := s.client.Collection(paymentCollection).Doc(paymentID).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("payment %s: %w", paymentID, model.ErrNotFound)
	}
	return err
}

func (s *FirestoreStore) CompletePaymentWithOTP(ctx context.Context, paymentID, otpID string, at time.Time) error {
	otpRef := s.client.Collection(otpCollection).Doc(otpID)
	payRef := s.client.Collection(paymentCollection).Doc(paymentID)

	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		otpSnap, err := tx.Get(otpRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("otp %s: %w", otpID, model.ErrNotFound)
			}
			return err
		}

		var rec model.OTPRecord
		if err := otpSnap.DataTo(&rec); err != nil {
			return fmt.Errorf("failed to parse OTP record: %w", err)
		}
		// A concurrent verify may have won the race.
		if rec.IsUsed {
			return fmt.Errorf("otp %s already used: %w", otpID, model.ErrNotFound)
		}

		if _, err := tx.Get(payRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("payment %s: %w", paymentID, model.ErrNotFound)
			}
			return err
		}

		if err := tx.Update(otpRef, []firestore.Update{
			{Path: "isUsed", Value: true},
			{Path: "usedAt", Value: at},
		}); err != nil {
			return err
		}
		return tx.Update(payRef, []firestore.Update{
			{Path: "state", Value: string(model.PaymentCompleted)},
			{Path: "completedAt", Value: at},
		})
	})
}

func (s *FirestoreStore) GetAccount(ctx context.Context, userType model.UserType, userID string) (*model.Account, error) {
	doc, err := s.client.Collection(userType.CollectionName()).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%s %s: %w", userType, userID, model.ErrNotFound)
		}
		return nil, err
	}

	var acc model.Account
	if err := doc.DataTo(&acc); err != nil {
		return nil, fmt.Errorf("failed to parse %s document: %w", userType, err)
	}
	if acc.ID == "" {
		acc.ID = doc.Ref.ID
	}
	return &acc, nil
}

// SetAccountDevices writes the whole fcmDevices array back. Concurrent
// registrations from the same user are last-writer-wins, which is acceptable
// at the contention one person's devices can produce.
func (s *FirestoreStore) SetAccountDevices(ctx context.Context, userType model.UserType, userID string, devices []model.FCMDevice) error {
	_, err := s.client.Collection(userType.CollectionName()).Doc(userID).Set(ctx,
		map[string]interface{}{"fcmDevices": devices}, firestore.MergeAll)
	return err
}

func (s *FirestoreStore) ReassignRetailer(ctx context.Context, retailerID, wholesalerID string) error {
	_, err := s.client.Collection(model.UserTypeRetailer.CollectionName()).Doc(retailerID).Update(ctx,
		[]firestore.Update{{Path: "wholesalerId", Value: wholesalerID}})
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("retailer %s: %w", retailerID, model.ErrNotFound)
	}
	return err
}

func (s *FirestoreStore) SaveRefreshToken(ctx context.Context, rec *model.TokenRecord) error {
	_, err := s.client.Collection(tokenCollection).Doc(rec.UserID).Set(ctx, rec)
	return err
}
