package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

// DevSender は開発用のワンタイムコード送信。
// SMSは送らず、コードをログに出すだけ。本番は外部の配信サービスに差し替える。
type DevSender struct {
	mu    sync.Mutex
	codes map[string]string
}

func NewDevSender() *DevSender {
	return &DevSender{codes: map[string]string{}}
}

func (s *DevSender) SendCode(ctx context.Context, phone string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%04d", n.Int64())
	challengeID := uuid.NewString()

	s.mu.Lock()
	s.codes[challengeID] = code
	s.mu.Unlock()

	log.Infof("otp code for %s: %s (challenge %s)", phone, code, challengeID)
	return challengeID, nil
}

// VerifyCode は1回限り。成功・失敗どちらでもチャレンジは消費する。
func (s *DevSender) VerifyCode(ctx context.Context, challengeID string, code string) (bool, error) {
	s.mu.Lock()
	want, ok := s.codes[challengeID]
	delete(s.codes, challengeID)
	s.mu.Unlock()

	return ok && want == code, nil
}
