package deps

import (
	"os/exec"
	"strings"
)

// Status represents the installation status of a dependency
type Status struct {
	Name      string
	Installed bool
	Path      string
	Version   string
	// Required marks tools readalong cannot run without.
	Required bool
}

// CheckPwRecord checks for pw-record, which captures microphone audio
func CheckPwRecord() Status {
	s := check("pw-record", "--version")
	s.Required = true
	return s
}

// CheckNotifySend checks for notify-send, used by desktop notifications
func CheckNotifySend() Status {
	return check("notify-send", "--version")
}

// All returns the status of every external tool readalong uses.
func All() []Status {
	return []Status{CheckPwRecord(), CheckNotifySend()}
}

func check(name, versionArg string) Status {
	return checkWith(exec.LookPath, name, versionArg)
}

func checkWith(lookPath func(string) (string, error), name, versionArg string) Status {
	path, err := lookPath(name)
	if err != nil {
		return Status{Name: name, Installed: false}
	}

	status := Status{
		Name:      name,
		Installed: true,
		Path:      path,
	}

	// first line of the version output is enough
	cmd := exec.Command(path, versionArg)
	output, err := cmd.Output()
	if err == nil {
		lines := strings.Split(string(output), "\n")
		if len(lines) > 0 {
			status.Version = strings.TrimSpace(lines[0])
		}
	}

	return status
}
