package main

import (
	"time"

	"github.com/google/wire"
	"github.com/mobcash/mobcash/worker/reconciler"
	"github.com/spf13/viper"
)

var workerSet = wire.NewSet(
	provideReconcilerConfig,
	reconciler.New,
)

func provideReconcilerConfig(v *viper.Viper) reconciler.Config {
	v.SetDefault("reconciler.grace_window", time.Minute)

	return reconciler.Config{
		GraceWindow: v.GetDuration("reconciler.grace_window"),
	}
}
