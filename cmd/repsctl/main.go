package main

import (
	"github.com/2beens/weeklyreps/internal/repsctl"
)

func main() {
	repsctl.Execute()
}
