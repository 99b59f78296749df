package types

// BackupParams defines options for the Backup function.
type BackupParams struct {
	Containers         []string // Manually configured container names.
	ExtraNames         []string // Container names given as positional arguments.
	AutoDetect         bool     // Query the runtime for running containers.
	NameFilter         string   // Case-insensitive substring auto-detected names must contain.
	WorkflowsPath      string   // In-container temporary directory for workflows.
	CredentialsPath    string   // In-container temporary directory for credentials.
	ExecUser           string   // Identity export commands run as.
	DecryptCredentials bool     // Export credentials in decrypted form.
	BaseDir            string   // Host directory holding files/, logs/ and archives.
	Password           string   // Archive password, empty for an unprotected archive.
	KeepLast           int      // Archives to retain, 0 keeps all.
}

// ContainerPath returns the in-container temporary directory for a category.
func (p BackupParams) ContainerPath(category Category) string {
	if category == Credentials {
		return p.CredentialsPath
	}

	return p.WorkflowsPath
}
