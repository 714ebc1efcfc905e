// Package ctl implements libraryctl, the operator tool for account
// administration that runs against the same store as the server.
//
// Commands:
//
//	create-admin -email E [-name N]   prompts for a password without echo
//	set-role -email E -role ADMIN|STUDENT
//
// Store and logging flags (-d, -c, -l) are shared with the server config.
package ctl
