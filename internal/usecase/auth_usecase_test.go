package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	infraRepo "github.com/zozz909/cafe-drive/internal/infra/repository"
)

type fixedClock struct {
	t time.Time
}

func (c *fixedClock) Now() time.Time { return c.t }

type stubIssuer struct{}

func (i *stubIssuer) Issue(customerID int64, phone string, now time.Time) (string, time.Time, error) {
	return "test-token", now.Add(15 * time.Minute), nil
}

type stubSender struct {
	challengeID string
	code        string
}

func (s *stubSender) SendCode(ctx context.Context, phone string) (string, error) {
	return s.challengeID, nil
}

func (s *stubSender) VerifyCode(ctx context.Context, challengeID string, code string) (bool, error) {
	return challengeID == s.challengeID && code == s.code, nil
}

func newAuthForTest() (*AuthUsecase, *infraRepo.MemoryStore) {
	store := infraRepo.NewMemoryStore()
	u := NewAuthUsecase(
		store,
		&stubSender{challengeID: "ch-1", code: "1234"},
		&stubIssuer{},
		&fixedClock{t: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)},
		bcryptCostForTest,
	)
	return u, store
}

// テストはコストを下げて回す
const bcryptCostForTest = 4

func TestRegisterAndLogin(t *testing.T) {
	u, _ := newAuthForTest()
	ctx := context.Background()

	out, err := u.Register(ctx, RegisterInput{Phone: "0501234567", Pin: "1234", Name: "Ahmed"})
	assert.NoError(t, err)
	assert.NotZero(t, out.CustomerID)

	login, err := u.Login(ctx, "0501234567", "1234")
	assert.NoError(t, err)
	assert.Equal(t, "Ahmed", login.Customer.Name)
	assert.Equal(t, "test-token", login.Token)
}

func TestRegisterPinValidation(t *testing.T) {
	u, _ := newAuthForTest()
	ctx := context.Background()

	for _, pin := range []string{"123", "12345", "12ab", ""} {
		_, err := u.Register(ctx, RegisterInput{Phone: "0501234567", Pin: pin})
		he, ok := AsHTTPError(err)
		assert.True(t, ok, "pin %q", pin)
		assert.Equal(t, http.StatusBadRequest, he.Status)
	}
}

func TestRegisterDuplicatePhone(t *testing.T) {
	u, _ := newAuthForTest()
	ctx := context.Background()

	_, err := u.Register(ctx, RegisterInput{Phone: "0501234567", Pin: "1234"})
	assert.NoError(t, err)

	_, err = u.Register(ctx, RegisterInput{Phone: "0501234567", Pin: "5678"})
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
}

func TestResetPin(t *testing.T) {
	u, _ := newAuthForTest()
	ctx := context.Background()

	_, err := u.Register(ctx, RegisterInput{Phone: "0501234567", Pin: "1234"})
	assert.NoError(t, err)

	_, err = u.Register(ctx, RegisterInput{Phone: "0501234567", Pin: "9999", Action: "reset_pin"})
	assert.NoError(t, err)

	// 旧PINは401、新PINは通る
	_, err = u.Login(ctx, "0501234567", "1234")
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Status)

	_, err = u.Login(ctx, "0501234567", "9999")
	assert.NoError(t, err)
}

func TestResetPinUnknownCustomer(t *testing.T) {
	u, _ := newAuthForTest()

	_, err := u.Register(context.Background(), RegisterInput{Phone: "0500000000", Pin: "1234", Action: "reset_pin"})
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
}

func TestLoginUnknownPhone(t *testing.T) {
	u, _ := newAuthForTest()

	_, err := u.Login(context.Background(), "0509999999", "1234")
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
}

func TestCheckPhone(t *testing.T) {
	u, _ := newAuthForTest()
	ctx := context.Background()

	out, err := u.CheckPhone(ctx, "0501234567")
	assert.NoError(t, err)
	assert.False(t, out.Exists)
	assert.Nil(t, out.Customer)

	_, err = u.Register(ctx, RegisterInput{Phone: "0501234567", Pin: "1234", Name: "Ahmed"})
	assert.NoError(t, err)

	out, err = u.CheckPhone(ctx, "0501234567")
	assert.NoError(t, err)
	assert.True(t, out.Exists)
	assert.True(t, out.HasPin)
	assert.Equal(t, "Ahmed", out.Customer.Name)
}

func TestSendAndVerifyCode(t *testing.T) {
	u, _ := newAuthForTest()
	ctx := context.Background()

	sent, err := u.SendCode(ctx, "0501234567")
	assert.NoError(t, err)
	assert.Equal(t, "ch-1", sent.ChallengeID)

	ok, err := u.VerifyCode(ctx, sent.ChallengeID, "1234")
	assert.NoError(t, err)
	assert.True(t, ok.Verified)

	bad, err := u.VerifyCode(ctx, sent.ChallengeID, "0000")
	assert.NoError(t, err)
	assert.False(t, bad.Verified)
}
