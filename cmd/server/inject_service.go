package main

import (
	"github.com/google/wire"
	"github.com/mobcash/mobcash/service/cashier"
	"github.com/mobcash/mobcash/service/external"
	"github.com/mobcash/mobcash/service/transaction"
	"github.com/spf13/viper"
)

var serviceSet = wire.NewSet(
	provideExternalConfig,
	external.New,
	transaction.New,
	cashier.New,
)

func provideExternalConfig(v *viper.Viper) external.Config {
	v.SetDefault("external.base_url", "https://yildiztop.com/api")

	return external.Config{
		BaseURL:       v.GetString("external.base_url"),
		LookupTimeout: v.GetDuration("external.lookup_timeout"),
		UpdateTimeout: v.GetDuration("external.update_timeout"),
	}
}
