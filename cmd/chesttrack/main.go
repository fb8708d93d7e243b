// Command chesttrack replays container memories and reports on the evictions
// they went through.
package main

import "github.com/sarchlab/chesttrack/cmd"

func main() {
	cmd.Execute()
}
