package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		check   func(string) error
		value   string
		wantErr string
	}{
		{name: "table", check: ValidateTableName, value: "documents"},
		{name: "table camel case", check: ValidateTableName, value: "pilotageDocuments"},
		{name: "table underscore", check: ValidateTableName, value: "bibliotheque_groups"},
		{name: "table max length", check: ValidateTableName, value: "a" + strings.Repeat("b", 63)},
		{name: "table empty", check: ValidateTableName, value: "", wantErr: "table name: cannot be empty"},
		{name: "table too long", check: ValidateTableName, value: "a" + strings.Repeat("b", 64), wantErr: "table name"},
		{name: "table leading digit", check: ValidateTableName, value: "1documents", wantErr: "table name"},
		{name: "table path traversal", check: ValidateTableName, value: "../etc", wantErr: "table name"},
		{name: "table dash", check: ValidateTableName, value: "global-load", wantErr: "table name"},

		{name: "login", check: ValidateUsername, value: "alice"},
		{name: "login email", check: ValidateUsername, value: "alice.martin@cabinet-conseil.fr"},
		{name: "login digits", check: ValidateUsername, value: "007"},
		{name: "login max length", check: ValidateUsername, value: strings.Repeat("a", 64)},
		{name: "login empty", check: ValidateUsername, value: "", wantErr: "username: cannot be empty"},
		{name: "login too short", check: ValidateUsername, value: "ab", wantErr: "username"},
		{name: "login too long", check: ValidateUsername, value: strings.Repeat("a", 65), wantErr: "username"},
		{name: "login leading dot", check: ValidateUsername, value: ".alice", wantErr: "username"},
		{name: "login space", check: ValidateUsername, value: "alice martin", wantErr: "username"},
		{name: "login cyrillic", check: ValidateUsername, value: "алиса", wantErr: "username"},

		{name: "password", check: ValidatePassword, value: "a-long-enough-password"},
		{name: "password min length", check: ValidatePassword, value: strings.Repeat("p", MinPasswordLen)},
		{name: "password bcrypt limit", check: ValidatePassword, value: strings.Repeat("p", MaxPasswordLen)},
		{name: "password empty", check: ValidatePassword, value: "", wantErr: "password: cannot be empty"},
		{name: "password short", check: ValidatePassword, value: "short", wantErr: "at least 10"},
		{name: "password over bcrypt limit", check: ValidatePassword, value: strings.Repeat("p", MaxPasswordLen+1), wantErr: "72 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check(tt.value)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
