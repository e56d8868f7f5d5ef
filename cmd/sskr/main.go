// Command sskr is the CLI entrypoint: generate, combine, wrap, unwrap,
// and interactive all live in the sibling cmd package.
package main

import "github.com/proxy-sskr/sskr/cmd"

func main() {
	cmd.Execute()
}
