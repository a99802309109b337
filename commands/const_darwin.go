package commands

const (
	_var = "/usr/local/var/monday-app-drive"

	DEFAULT_WORKDIR     = _var
	DEFAULT_CREDENTIALS = ""
)
