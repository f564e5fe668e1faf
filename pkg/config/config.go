// Package config는 환경 변수 기반 설정 값 조회를 담당하는 패키지입니다.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config 인터페이스는 설정 값에 액세스하기 위한 메서드를 정의합니다.
type Config interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	IsSet(key string) bool
}

// viperConfig는 viper를 사용하여 Config 인터페이스를 구현합니다.
type viperConfig struct {
	v *viper.Viper
}

// GetString은 문자열 설정 값을 반환합니다.
func (c *viperConfig) GetString(key string) string {
	return strings.TrimSpace(c.v.GetString(key))
}

// GetInt는 정수 설정 값을 반환합니다.
func (c *viperConfig) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetBool은 불리언 설정 값을 반환합니다.
func (c *viperConfig) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// IsSet은 키에 해당하는 환경 변수가 비어 있지 않은지 확인합니다.
func (c *viperConfig) IsSet(key string) bool {
	return c.GetString(key) != ""
}

// FromEnv는 프로세스 환경 변수를 읽는 Config를 생성합니다.
// 키의 "."는 "_"로 바뀌고 대문자로 조회됩니다 (paystack.secret_key -> PAYSTACK_SECRET_KEY).
// prefix가 비어 있지 않으면 PREFIX_ 가 앞에 붙습니다.
func FromEnv(prefix string) Config {
	v := viper.New()

	if prefix != "" {
		v.SetEnvPrefix(strings.ToUpper(prefix))
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &viperConfig{v: v}
}
