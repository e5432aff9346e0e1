package config

import (
	"fmt"
	"os"
	"strconv"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	JWTSecret string // JWT署名シークレット

	GoEnv       string // dev/prod
	FrontendURL string // フロントURL（CORSで使う）

	// トラッカー/ダッシュボードのポーリング間隔（秒）。/healthで配る。
	PollIntervalSeconds int

	// 退避運転からの復帰チェック間隔（秒）
	ProbeIntervalSeconds int
}

// Loadは環境変数から読む。DB接続情報はinfra/dbが直接環境変数を見る。
func Load() (Config, error) {
	cfg := Config{
		Port:        getenv("PORT", "8080"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		GoEnv:       getenv("GO_ENV", "dev"),
		FrontendURL: os.Getenv("FE_URL"),
	}

	poll, err := atoiDefault("POLL_INTERVAL_SECONDS", 10)
	if err != nil {
		return Config{}, err
	}
	cfg.PollIntervalSeconds = poll

	probe, err := atoiDefault("PROBE_INTERVAL_SECONDS", 30)
	if err != nil {
		return Config{}, err
	}
	cfg.ProbeIntervalSeconds = probe

	//必須チェック（devだけデフォルトを許す）
	if cfg.JWTSecret == "" {
		if cfg.GoEnv != "dev" {
			return Config{}, fmt.Errorf("JWT_SECRET is required")
		}
		cfg.JWTSecret = "dev_secret_change_me"
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	if i < 1 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return i, nil
}
