package usecase

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/zozz909/cafe-drive/internal/domain/model"
	repo "github.com/zozz909/cafe-drive/internal/repository"
)

// PINは4桁の数字
var pinPattern = regexp.MustCompile(`^[0-9]{4}$`)

// ワンタイムコードの配信・確認は外部の能力として受け取る。
type CodeSender interface {
	SendCode(ctx context.Context, phone string) (challengeID string, err error)
	VerifyCode(ctx context.Context, challengeID string, code string) (bool, error)
}

type TokenIssuer interface {
	Issue(customerID int64, phone string, now time.Time) (token string, expiresAt time.Time, err error)
}

type Clock interface {
	Now() time.Time
}

type AuthUsecase struct {
	tx         repo.TransactionManager
	sender     CodeSender
	issuer     TokenIssuer
	clock      Clock
	bcryptCost int
}

func NewAuthUsecase(tx repo.TransactionManager, sender CodeSender, issuer TokenIssuer, clock Clock, bcryptCost int) *AuthUsecase {
	return &AuthUsecase{
		tx:         tx,
		sender:     sender,
		issuer:     issuer,
		clock:      clock,
		bcryptCost: bcryptCost,
	}
}

type CustomerOutput struct {
	ID    int64  `json:"id"`
	Phone string `json:"phone"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CheckPhoneOutput struct {
	Exists   bool            `json:"exists"`
	HasPin   bool            `json:"hasPin"`
	Customer *CustomerOutput `json:"customer,omitempty"`
}

// CheckPhone は電話番号の登録有無を返す。PINは返さない。
func (u *AuthUsecase) CheckPhone(ctx context.Context, phone string) (CheckPhoneOutput, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return CheckPhoneOutput{}, NewHTTPError(http.StatusBadRequest, "phone required")
	}

	var out CheckPhoneOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Customers().FindByPhone(ctx, phone)
		if errors.Is(err, repo.ErrNotFound) {
			out = CheckPhoneOutput{Exists: false, HasPin: false}
			return nil
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = CheckPhoneOutput{
			Exists:   true,
			HasPin:   true,
			Customer: toCustomerOutput(c),
		}
		return nil
	})
	if err != nil {
		return CheckPhoneOutput{}, err
	}
	return out, nil
}

type RegisterInput struct {
	Phone  string
	Pin    string
	Name   string
	Email  string
	Action string // "" = 新規登録, "reset_pin" = PIN再設定
}

type RegisterOutput struct {
	CustomerID int64 `json:"customer_id"`
}

// Register は新規登録かPIN再設定。どちらもPINはハッシュ化して保存する。
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (RegisterOutput, error) {
	phone := strings.TrimSpace(in.Phone)
	if phone == "" || in.Pin == "" {
		return RegisterOutput{}, NewHTTPError(http.StatusBadRequest, "phone and pin required")
	}
	if !pinPattern.MatchString(in.Pin) {
		return RegisterOutput{}, NewHTTPError(http.StatusBadRequest, "pin must be 4 digits")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Pin), u.bcryptCost)
	if err != nil {
		return RegisterOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var out RegisterOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if in.Action == "reset_pin" {
			err := r.Customers().UpdatePinHash(ctx, phone, string(hash))
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "customer not found")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			c, err := r.Customers().FindByPhone(ctx, phone)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = RegisterOutput{CustomerID: c.ID}
			return nil
		}

		now := u.clock.Now()
		id, err := r.Customers().Create(ctx, model.Customer{
			Phone:     phone,
			PinHash:   string(hash),
			Name:      strings.TrimSpace(in.Name),
			Email:     strings.TrimSpace(in.Email),
			CreatedAt: now,
			UpdatedAt: now,
		})
		if errors.Is(err, repo.ErrConflict) {
			return NewHTTPError(http.StatusBadRequest, "phone already registered")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = RegisterOutput{CustomerID: id}
		return nil
	})
	if err != nil {
		return RegisterOutput{}, err
	}
	return out, nil
}

type LoginOutput struct {
	Customer  CustomerOutput `json:"customer"`
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// Login はPIN照合。未登録は404、PIN不一致は401。
func (u *AuthUsecase) Login(ctx context.Context, phone string, pin string) (LoginOutput, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" || pin == "" {
		return LoginOutput{}, NewHTTPError(http.StatusBadRequest, "phone and pin required")
	}

	var customer model.Customer
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Customers().FindByPhone(ctx, phone)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "customer not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		customer = c
		return nil
	})
	if err != nil {
		return LoginOutput{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(customer.PinHash), []byte(pin)) != nil {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "wrong pin")
	}

	token, expiresAt, err := u.issuer.Issue(customer.ID, customer.Phone, u.clock.Now())
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return LoginOutput{
		Customer:  *toCustomerOutput(customer),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Me はトークンの customer_id から自分の情報を引く。
func (u *AuthUsecase) Me(ctx context.Context, customerID int64) (CustomerOutput, error) {
	if customerID <= 0 {
		return CustomerOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var out CustomerOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Customers().FindByID(ctx, customerID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "customer not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = *toCustomerOutput(c)
		return nil
	})
	if err != nil {
		return CustomerOutput{}, err
	}
	return out, nil
}

type SendCodeOutput struct {
	ChallengeID string `json:"challenge_id"`
}

func (u *AuthUsecase) SendCode(ctx context.Context, phone string) (SendCodeOutput, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return SendCodeOutput{}, NewHTTPError(http.StatusBadRequest, "phone required")
	}
	id, err := u.sender.SendCode(ctx, phone)
	if err != nil {
		return SendCodeOutput{}, NewHTTPError(http.StatusInternalServerError, "could not send code")
	}
	return SendCodeOutput{ChallengeID: id}, nil
}

type VerifyCodeOutput struct {
	Verified bool `json:"verified"`
}

func (u *AuthUsecase) VerifyCode(ctx context.Context, challengeID string, code string) (VerifyCodeOutput, error) {
	if strings.TrimSpace(challengeID) == "" || strings.TrimSpace(code) == "" {
		return VerifyCodeOutput{}, NewHTTPError(http.StatusBadRequest, "challenge_id and code required")
	}
	ok, err := u.sender.VerifyCode(ctx, challengeID, code)
	if err != nil {
		return VerifyCodeOutput{}, NewHTTPError(http.StatusInternalServerError, "could not verify code")
	}
	return VerifyCodeOutput{Verified: ok}, nil
}

func toCustomerOutput(c model.Customer) *CustomerOutput {
	return &CustomerOutput{
		ID:    c.ID,
		Phone: c.Phone,
		Name:  c.Name,
		Email: c.Email,
	}
}
