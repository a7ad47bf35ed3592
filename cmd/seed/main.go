package main

import (
	"github.com/shopcart-next/internal/app"
	"github.com/shopcart-next/internal/config"
	"github.com/shopcart-next/internal/logger"
	"github.com/shopcart-next/internal/models"
	"github.com/shopcart-next/internal/repository"
	"github.com/shopcart-next/internal/service"

	"github.com/shopspring/decimal"
)

type seedItem struct {
	name   string
	plural string
	price  string
	stock  int
}

var demoCatalog = []seedItem{
	{name: "Apple", plural: "Apples", price: "3.00", stock: 5},
	{name: "Banana", plural: "Bananas", price: "0.45", stock: 120},
	{name: "Cherry", plural: "Cherries", price: "0.20", stock: 500},
	{name: "Loaf of Bread", plural: "Loaves of Bread", price: "2.75", stock: 12},
	{name: "Bottle of Milk", plural: "Bottles of Milk", price: "1.10", stock: 30},
	{name: "Dozen Eggs", plural: "Dozen Eggs", price: "3.60", stock: 8},
	{name: "Wheel of Cheese", plural: "Wheels of Cheese", price: "24.99", stock: 2},
	{name: "Truffle", plural: "Truffles", price: "89.00", stock: 0},
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()
	if err := app.PrepareDatabase(cfg); err != nil {
		stdLog.Fatalf("Failed to prepare database: %v", err)
	}

	// 按名称写入演示目录，可重复执行
	catalog := service.NewCatalogService(repository.NewCatalogRepository(models.DB), 0)
	for _, seed := range demoCatalog {
		item, created, err := catalog.UpsertByName(service.UpsertCatalogItemInput{
			Name:       seed.name,
			NamePlural: seed.plural,
			UnitPrice:  decimal.RequireFromString(seed.price),
			Quantity:   seed.stock,
		})
		if err != nil {
			stdLog.Printf("Failed to seed catalog item %s: %v", seed.name, err)
			continue
		}
		if created {
			stdLog.Printf("Created catalog item: %s (%s)", item.Name, item.ID)
		} else {
			stdLog.Printf("Updated catalog item: %s (%s)", item.Name, item.ID)
		}
	}

	stdLog.Printf("Seed data completed")
}
