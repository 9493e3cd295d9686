package main

import (
	"github.com/google/wire"
	"github.com/mobcash/mobcash/store/db"
	"github.com/mobcash/mobcash/store/property"
	"github.com/mobcash/mobcash/store/transaction"
	"github.com/spf13/viper"
	"github.com/tsenart/nap"

	_ "github.com/go-sql-driver/mysql"
)

var storeSet = wire.NewSet(
	provideDB,
	property.New,
	transaction.New,
)

func provideDB(v *viper.Viper) (*nap.DB, func(), error) {
	v.SetDefault("db.driver", "mysql")

	driver := v.GetString("db.driver")
	dsn := v.GetString("db.dsn")

	for _, replica := range v.GetStringSlice("db.replicas") {
		dsn += ";" + replica
	}

	conn, err := nap.Open(driver, dsn)
	if err != nil {
		return nil, nil, err
	}

	if err := db.Migrate(conn.Master()); err != nil {
		return nil, nil, err
	}

	return conn, func() { _ = conn.Close() }, nil
}
