package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"lostfound/backend/models"
	"lostfound/backend/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// IdentityResolver reconciles a verified external identity claim into a
// durable local user, provisioning one the first time an email is seen.
type IdentityResolver struct {
	DB *gorm.DB
}

func NewIdentityResolver(db *gorm.DB) *IdentityResolver {
	return &IdentityResolver{DB: db}
}

// ValidatePrincipal rejects requests whose claim bundle is unusable: a
// missing email or an unverified identity is a security failure, not a
// validation failure.
func ValidatePrincipal(p *utils.Principal) error {
	if p == nil || strings.TrimSpace(p.Email) == "" {
		return fmt.Errorf("%w: missing required token claims", ErrUnauthorized)
	}
	if !p.Verified {
		return fmt.Errorf("%w: user is not verified", ErrUnauthorized)
	}
	return nil
}

// Resolve returns the user for the principal's email, creating one on first
// sight. An existing record is returned unchanged; only explicit profile
// updates may change it.
func (r *IdentityResolver) Resolve(p *utils.Principal) (*models.User, error) {
	if err := ValidatePrincipal(p); err != nil {
		return nil, err
	}

	var user models.User
	err := r.DB.Where("email = ?", p.Email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fullName := strings.TrimSpace(p.Name)
	if fullName == "" {
		fullName = strings.SplitN(p.Email, "@", 2)[0]
	}

	// Nobody logs in against this column; it exists because the schema
	// requires a credential and must never match anything.
	placeholder, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user = models.User{
		FullName:    fullName,
		Email:       p.Email,
		Password:    string(placeholder),
		IsVerified:  true,
		IsSuperuser: false,
		LastSeen:    time.Now(),
	}

	if err := r.DB.Create(&user).Error; err != nil {
		// Two requests can race on first sight; the unique email index
		// rejects the loser, which then adopts the winner's row.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var existing models.User
			if lookupErr := r.DB.Where("email = ?", p.Email).First(&existing).Error; lookupErr == nil {
				return &existing, nil
			}
		}
		return nil, err
	}

	return &user, nil
}
