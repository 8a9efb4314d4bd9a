// A builder for self-extracting installers on Linux systems.
//
// Files and directories are packed into a tar archive and appended to a small native
// stub. The stub is compiled twice: the second time with its own size from the first
// pass as THIS_FILE_SIZE, which is how it finds the archive appended after it. At run
// time it unpacks the archive to a temporary directory and runs the "setup" program from
// it.
//
// The setup program can be generated from an install spec, a yaml list of screens that
// become dialog calls in a bash script. An "uninstall" list becomes a second script which
// the installer writes out when it runs.
//
// See cmd/sfx for the command line interface.
package sfx_installer
