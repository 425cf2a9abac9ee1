// Package preflight provides local readiness checks behind "ftpswatch doctor".
//
// The checks never log in or send mail. They confirm the log directory is
// writable, the optional CA bundle is readable, the required settings are
// present and, when asked, that the FTPS and SMTP ports accept TCP
// connections.
package preflight
