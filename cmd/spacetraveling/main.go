// Command spacetraveling builds and serves the blog.
package main

func main() {
	Execute()
}
