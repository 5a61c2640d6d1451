// Package database provides a GORM-based database component with connection
// pooling, retrying connect, health checks and auto-migration.
//
// The driver is chosen by Config.Driver: "postgres" for deployments and
// "sqlite" for local runs and tests.
//
//	db := database.NewComponent(cfg, log).WithAutoMigrate(&Account{}, &Address{})
//	registry.Register(db)
//
// Errors from GORM are translated (TranslateError) so FromDatabase can map
// unique-key violations to a Conflict AppError independent of the driver.
package database
