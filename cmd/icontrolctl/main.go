// Command icontrolctl inspects and calls the iControl SOAP API of F5
// BIG-IP appliances.
//
// Password can be provided via:
//   - --password flag (least secure, visible in process list)
//   - ICONTROL_PASSWORD environment variable (recommended)
//   - a profile in the config file
//   - stdin prompt (when a user was named but no password was given)
//
// Usage:
//
//	icontrolctl --host <appliance> [command]
//
// Examples:
//
//	# List everything the appliance exposes
//	icontrolctl --host bigip1 namespaces
//
//	# Show the methods of one interface
//	icontrolctl --host bigip1 methods LocalLB.Pool
//
//	# Call a method with JSON arguments
//	export ICONTROL_PASSWORD='secret'
//	icontrolctl --host bigip1 --user admin call LocalLB.Pool get_list
package main

// version can be set during build with -ldflags.
var version = "dev"

func main() {
	Execute()
}
