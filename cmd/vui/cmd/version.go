package cmd

func init() {
	RegisterCommand(&Command{
		Name:  "version",
		Short: "Show version information",
		Long:  "Print the vui CLI version and build time.",
		Usage: "vui version",
		Run: func([]string) error {
			printVersion()
			return nil
		},
	})
}
