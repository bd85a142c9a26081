package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Electric Cars", "electric-cars"},
		{"  Trucks & Buses!  ", "trucks-buses"},
		{"Электромобили", "elektromobili"},
		{"Щётки для машин", "schetki-dlya-mashin"},
		{"snake_case--name", "snake-case-name"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}

func TestCompanyFieldValidators(t *testing.T) {
	type legal struct {
		INN     string `validate:"omitempty,inn"`
		KPP     string `validate:"omitempty,kpp"`
		OGRN    string `validate:"omitempty,ogrn"`
		Account string `validate:"omitempty,bank_account"`
		BIK     string `validate:"omitempty,bik"`
		Phone   string `validate:"omitempty,phone"`
	}

	valid := legal{
		INN:     "7707083893",
		KPP:     "773601001",
		OGRN:    "1027700132195",
		Account: "40702810938000000001",
		BIK:     "044525225",
		Phone:   "+79161234567",
	}
	require.NoError(t, ValidateStruct(&valid))
	require.NoError(t, ValidateStruct(&legal{}))

	invalid := legal{INN: "77070", KPP: "12", OGRN: "abc", Account: "4070", BIK: "04452522x", Phone: "12"}
	errs := GetValidationErrors(ValidateStruct(&invalid))
	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	assert.ElementsMatch(t, []string{"inn", "kpp", "ogrn", "account", "bik", "phone"}, fields)
}

func TestNormalizePagination(t *testing.T) {
	p := NormalizePagination(PaginationParams{Page: -3, Limit: 500, Order: "sideways"})
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, defaultPageLimit, p.Limit)
	assert.Equal(t, "desc", p.Order)
	assert.Equal(t, "created_at", p.Sort)

	p = NormalizePagination(PaginationParams{Page: 3, Limit: 10, Order: "asc"})
	assert.Equal(t, 20, p.Offset())

	result := CreatePaginationResult([]int{1}, 21, p)
	assert.Equal(t, 3, result.TotalPages)
}

func TestResetCodeAndHash(t *testing.T) {
	code, err := GenerateResetCode()
	require.NoError(t, err)
	assert.Regexp(t, `^\d{6}$`, code)

	digest := HashString(code)
	assert.True(t, MatchesHash(code, digest))
	assert.False(t, MatchesHash("000000x", digest))
	assert.False(t, MatchesHash(code, ""))
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	SetJWTSecret("utils-test-secret")
	userID := uuid.New()

	access, err := GenerateJWT(userID, "user@example.com", "CLIENT", 1)
	require.NoError(t, err)
	refresh, err := GenerateRefreshToken(userID, 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(access)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)

	subject, err := ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), subject)

	_, err = ValidateJWT(refresh)
	assert.Error(t, err)
	_, err = ValidateRefreshToken(access)
	assert.Error(t, err)

	expired, err := GenerateJWT(userID, "user@example.com", "CLIENT", -1)
	require.NoError(t, err)
	_, err = ValidateJWT(expired)
	assert.Error(t, err)
}
