package main

import "github.com/jkhliffz09/airport-fid-service/internal/fidctl"

func main() {
	fidctl.Execute()
}
