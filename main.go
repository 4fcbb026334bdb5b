package main

import "github.com/josephcsible/ghc-lib/internal/ghclib"

func main() {
	ghclib.Main()
}
