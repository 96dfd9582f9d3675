package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"

	"github.com/example/foodhub/internal/authflow"
	"github.com/example/foodhub/internal/models"
	"github.com/example/foodhub/internal/utils"
)

// MaxVerifyAttempts is how many wrong guesses a code survives.
const MaxVerifyAttempts = 5

// CodeSender delivers a freshly issued code to a contact.
type CodeSender interface {
	SendCode(ctx context.Context, contact, code string) error
}

// IssuedCodes verifies against codes it generated and stored hashed in
// sms_verifications. A code is single use, expires after ttl and is burned
// after MaxVerifyAttempts wrong guesses.
type IssuedCodes struct {
	db       *gorm.DB
	sender   CodeSender
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
}

// NewIssuedCodes constructs the issued-code policy.
func NewIssuedCodes(db *gorm.DB, sender CodeSender, ttl time.Duration) *IssuedCodes {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &IssuedCodes{
		db:       db,
		sender:   sender,
		ttl:      ttl,
		now:      time.Now,
		generate: generateVerificationCode,
	}
}

// Issue replaces any outstanding code for the contact and sends a new one.
func (p *IssuedCodes) Issue(ctx context.Context, pending authflow.PendingAuthRecord) error {
	code, err := p.generate()
	if err != nil {
		return fmt.Errorf("generate verification code: %w", err)
	}
	hash, err := utils.HashCode(code)
	if err != nil {
		return fmt.Errorf("hash verification code: %w", err)
	}

	now := p.now().UTC()
	db := p.db.WithContext(ctx)
	if err := db.Model(&models.SMSVerification{}).
		Where("contact = ? AND role = ? AND used_at IS NULL", pending.Contact, string(pending.Role)).
		Update("expires_at", now).Error; err != nil {
		return err
	}

	verification := models.SMSVerification{
		Contact:   pending.Contact,
		Role:      string(pending.Role),
		CodeHash:  hash,
		ExpiresAt: now.Add(p.ttl),
	}
	if err := db.Create(&verification).Error; err != nil {
		return err
	}

	return p.sender.SendCode(ctx, pending.Contact, code)
}

// Verify checks code against the newest live code for the contact. A match
// is consumed with a conditional update so concurrent callers cannot both
// succeed.
func (p *IssuedCodes) Verify(ctx context.Context, pending authflow.PendingAuthRecord, code string) (bool, error) {
	now := p.now().UTC()
	db := p.db.WithContext(ctx)

	var verification models.SMSVerification
	err := db.
		Where("contact = ? AND role = ? AND used_at IS NULL AND expires_at > ? AND attempts < ?",
			pending.Contact, string(pending.Role), now, MaxVerifyAttempts).
		Order("created_at desc").
		First(&verification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if !utils.CheckCode(verification.CodeHash, code) {
		if err := db.Model(&models.SMSVerification{}).
			Where("id = ? AND used_at IS NULL", verification.ID).
			Update("attempts", gorm.Expr("attempts + 1")).Error; err != nil {
			return false, err
		}
		return false, nil
	}

	res := db.Model(&models.SMSVerification{}).
		Where("id = ? AND used_at IS NULL AND attempts < ?", verification.ID, MaxVerifyAttempts).
		Updates(map[string]any{"verified": true, "used_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func generateVerificationCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
