package render

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestValidator(t *testing.T) {
	validate := newValidator()

	type signup struct {
		Username        string  `json:"username" validate:"required,min=4,max=20,username"`
		Password        string  `json:"password" validate:"required,min=8,max=20,password"`
		ConfirmPassword string  `json:"confirmPassword" validate:"required,eqfield=Password"`
		Nickname        *string `json:"nickname" validate:"omitempty,min=2,max=20,nickname"`
	}

	nick := func(v string) *string { return &v }

	tests := []struct {
		name    string
		value   signup
		invalid []string
	}{
		{
			name:  "valid",
			value: signup{Username: "alice_01", Password: "Secr3t!pwd", ConfirmPassword: "Secr3t!pwd", Nickname: nick("Alice.K")},
		},
		{
			name:  "nickname omitted",
			value: signup{Username: "alice", Password: "Secr3t!pwd", ConfirmPassword: "Secr3t!pwd"},
		},
		{
			name:    "username with space",
			value:   signup{Username: "ali ce", Password: "Secr3t!pwd", ConfirmPassword: "Secr3t!pwd"},
			invalid: []string{"username"},
		},
		{
			name:    "username not latin",
			value:   signup{Username: "алиса", Password: "Secr3t!pwd", ConfirmPassword: "Secr3t!pwd"},
			invalid: []string{"username"},
		},
		{
			name:    "password without special char",
			value:   signup{Username: "alice", Password: "Secr3tpwd", ConfirmPassword: "Secr3tpwd"},
			invalid: []string{"password"},
		},
		{
			name:    "password without digit",
			value:   signup{Username: "alice", Password: "Secret!pwd", ConfirmPassword: "Secret!pwd"},
			invalid: []string{"password"},
		},
		{
			name:    "confirmation differs",
			value:   signup{Username: "alice", Password: "Secr3t!pwd", ConfirmPassword: "Secr3t!pwe"},
			invalid: []string{"confirmPassword"},
		},
		{
			name:    "nickname digits only",
			value:   signup{Username: "alice", Password: "Secr3t!pwd", ConfirmPassword: "Secr3t!pwd", Nickname: nick("12345")},
			invalid: []string{"nickname"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.value)

			if len(tt.invalid) == 0 {
				require.NoError(t, err)
				return
			}

			var errs validator.ValidationErrors
			require.ErrorAs(t, err, &errs)
			fields := make([]string, 0, len(errs))
			for _, e := range errs {
				fields = append(fields, e.Field())
			}
			require.ElementsMatch(t, tt.invalid, fields)
		})
	}
}
