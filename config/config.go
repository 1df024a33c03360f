// Package config loads sxnet settings from a file and SXNET_* environment variables.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/moqsien/sxnet/iface"
)

const EnvPrefix = "SXNET"

type Config struct {
	Serve ServeConfig `mapstructure:"serve"`
	Admin AdminConfig `mapstructure:"admin"`
	DNS   DNSConfig   `mapstructure:"dns"`
	Watch WatchConfig `mapstructure:"watch"`
}

type ServeConfig struct {
	Network      string        `mapstructure:"network"` // tcp, tcp6, udp, unix
	Address      string        `mapstructure:"address"`
	Service      string        `mapstructure:"service"` // echo or file
	Root         string        `mapstructure:"root"`    // file service root
	Raw          bool          `mapstructure:"raw"`     // create the socket without the net package
	Loops        int           `mapstructure:"loops"`
	Balancer     string        `mapstructure:"balancer"`
	ReusePort    bool          `mapstructure:"reuse_port"`
	ReadBuffer   int           `mapstructure:"read_buffer"`
	KeepAlive    time.Duration `mapstructure:"keep_alive"`
	TaskPoolSize int           `mapstructure:"task_pool_size"`
	LockOSThread bool          `mapstructure:"lock_os_thread"`
}

type AdminConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

type DNSConfig struct {
	Server  string        `mapstructure:"server"`
	Timeout time.Duration `mapstructure:"timeout"`
	Family  string        `mapstructure:"family"` // inet, inet6 or empty
}

type WatchConfig struct {
	Portable bool     `mapstructure:"portable"`
	Events   []string `mapstructure:"events"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("serve.network", "tcp")
	v.SetDefault("serve.address", "127.0.0.1:20000")
	v.SetDefault("serve.service", "echo")
	v.SetDefault("serve.root", ".")
	v.SetDefault("serve.raw", false)
	v.SetDefault("serve.loops", 0)
	v.SetDefault("serve.balancer", iface.RoundRobinLB.String())
	v.SetDefault("serve.reuse_port", false)
	v.SetDefault("serve.read_buffer", iface.DefaultReadBuffer)
	v.SetDefault("serve.keep_alive", 0)
	v.SetDefault("serve.task_pool_size", 16)
	v.SetDefault("serve.lock_os_thread", false)
	v.SetDefault("admin.enabled", false)
	v.SetDefault("admin.address", "127.0.0.1:20080")
	v.SetDefault("dns.server", "")
	v.SetDefault("dns.timeout", 5*time.Second)
	v.SetDefault("dns.family", "")
	v.SetDefault("watch.portable", false)
	v.SetDefault("watch.events", []string{})
}

// NewViper returns a viper with defaults and environment binding, file is optional.
func NewViper(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", file)
		}
	}
	return v, nil
}

func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}

// Options converts the serve section for engine.Serve.
func (that *ServeConfig) Options() *iface.Options {
	return &iface.Options{
		NumOfLoops:    that.Loops,
		LoadBalancer:  iface.ParseBalancer(that.Balancer),
		ReusePort:     that.ReusePort,
		ReadBuffer:    that.ReadBuffer,
		ConnKeepAlive: that.KeepAlive,
		LockOSThread:  that.LockOSThread,
		TaskPoolSize:  that.TaskPoolSize,
		ConnAdapter:   iface.ConnNoneAdapter,
	}
}
