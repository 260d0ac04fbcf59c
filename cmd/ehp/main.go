package main

import (
	"ExamHallPlanner/internal/bootstrap"
	pkg "ExamHallPlanner/pkg/routes"

	"go.uber.org/fx"
)

func main() {
	bootstrap.LoadEnv()
	app := fx.New(
		pkg.EchoModules,
	)
	app.Run()
}
