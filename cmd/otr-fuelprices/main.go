package main

import (
	"github.com/nutterthanos/OTR-FuelPrices/internal/cli"
)

func main() {
	cli.Execute()
}
