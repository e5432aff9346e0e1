package repository

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/gommon/log"

	repo "github.com/zozz909/cafe-drive/internal/repository"
)

// FailoverTxManager は通常は永続DBを使い、接続断のときだけメモリ退避に切り替える。
// 切り替わったことは Degraded() で外から見える（/healthで公開する）。
// 業務エラー（not found / conflict / validation）では切り替えない。
type FailoverTxManager struct {
	primary  repo.TransactionManager
	fallback repo.TransactionManager
	ping     func(ctx context.Context) error
	degraded atomic.Bool
}

// primary==nil は起動時からDBが無い状態。最初から退避運転になる。
func NewFailoverTxManager(primary repo.TransactionManager, fallback repo.TransactionManager, ping func(ctx context.Context) error) *FailoverTxManager {
	m := &FailoverTxManager{
		primary:  primary,
		fallback: fallback,
		ping:     ping,
	}
	if primary == nil {
		m.degraded.Store(true)
		log.Warn("durable store unavailable at startup, running on in-memory fallback")
	}
	return m
}

func (m *FailoverTxManager) Degraded() bool {
	return m.degraded.Load()
}

func (m *FailoverTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if m.degraded.Load() {
		return m.fallback.WithinTx(ctx, fn)
	}

	err := m.primary.WithinTx(ctx, fn)
	if err != nil && isUnavailable(err) {
		// primary側はロールバック済みなので、退避側でやり直して良い
		if m.degraded.CompareAndSwap(false, true) {
			log.Warnf("durable store unavailable, switching to in-memory fallback: %v", err)
		}
		return m.fallback.WithinTx(ctx, fn)
	}
	return err
}

// StartProbe は退避運転中にprimaryを定期的に叩き、復旧したら戻す。
func (m *FailoverTxManager) StartProbe(ctx context.Context, interval time.Duration) {
	if m.primary == nil || m.ping == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !m.degraded.Load() {
					continue
				}
				pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
				err := m.ping(pingCtx)
				cancel()
				if err == nil && m.degraded.CompareAndSwap(true, false) {
					log.Info("durable store recovered, leaving degraded mode")
				}
			}
		}
	}()
}

// 接続レベルの失敗か（= 退避して良いか）
func isUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08 = connection exception
		return strings.HasPrefix(pgErr.Code, "08")
	}
	return false
}
