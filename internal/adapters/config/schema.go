package config

// Kilnfile represents the structure of the kiln.yaml configuration file.
type Kilnfile struct {
	Src         string                  `yaml:"src"`
	Dest        string                  `yaml:"dest"`
	Enable      []string                `yaml:"enable"`
	Verify      string                  `yaml:"verify"`
	WaitTimeout string                  `yaml:"waitTimeout"`
	Listen      string                  `yaml:"listen"`
	Transforms  map[string]TransformDTO `yaml:"transforms"`
	Log         LogDTO                  `yaml:"log"`
}

// TransformDTO overrides a bundled transform.
type TransformDTO struct {
	Cmd []string `yaml:"cmd"`
}

// LogDTO configures log output.
type LogDTO struct {
	JSON   bool   `yaml:"json"`
	Format string `yaml:"format"`
}
