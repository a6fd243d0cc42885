package commands

import (
	"strings"
	"time"
	"unicode"

	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/errors"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/ports"
)

const (
	maxUsernameLength = 64
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes = 72
)

func validateUsername(username string) error {
	if username == "" || len(username) > maxUsernameLength {
		return domainerrors.ErrInvalidUsername
	}
	for _, r := range username {
		if unicode.IsSpace(r) || r == '/' || !unicode.IsPrint(r) {
			return domainerrors.ErrInvalidUsername
		}
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordBytes {
		return domainerrors.ErrInvalidPassword
	}
	if strings.TrimSpace(password) == "" {
		return domainerrors.ErrInvalidPassword
	}
	return nil
}

func resolveNow(clock ports.Clock) time.Time {
	if clock != nil {
		return clock.Now().UTC()
	}
	return time.Now().UTC()
}
