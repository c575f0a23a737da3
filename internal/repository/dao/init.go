package dao

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrTombolaNotFound      = errors.New("tombola not found")
	ErrTombolaNotActive     = errors.New("tombola is not active")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrCouponNotFound       = errors.New("coupon not found")
	ErrCouponCodeExists     = errors.New("coupon code already exists")
	ErrTicketNumberExists   = errors.New("ticket number already exists")
	ErrSponsorPaymentExists = errors.New("sponsor payment already exists")
	ErrWinnerNotFound       = errors.New("winner not found")
	ErrSettingsNotFound     = errors.New("app settings not found")
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&Tombola{},
		&TombolaPrize{},
		&Participant{},
		&Coupon{},
		&CouponUse{},
		&CommissionTier{},
		&Winner{},
		&SponsorPayment{},
		&AppSettings{},
	)
}

// isUniqueViolation reports whether err is a postgres unique-constraint
// violation on the named constraint. An empty name matches any.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}

	return constraint == "" ||
		pgErr.ConstraintName == constraint ||
		strings.Contains(pgErr.Message, constraint)
}
