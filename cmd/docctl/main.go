// Command docctl reads and writes documents on a running store service.
package main

func main() {
	Execute()
}
