package helper

import "os"

func main() {
	os.Exit(3)
}
