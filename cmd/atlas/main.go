package main

import "github.com/yungbote/atlas-backend/internal/cli"

func main() {
	cli.Execute()
}
