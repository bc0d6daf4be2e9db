// Command easel edits canvases from natural-language prompts.
package main

func main() {
	Execute()
}
