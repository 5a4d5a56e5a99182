package main

import (
	"os"

	"github.com/traits-unit/traits-unit/framework"
	"github.com/traits-unit/traits-unit/httptraits"
)

func main() {
	os.Exit(framework.Main(httptraits.Subject()))
}
