package config

type VolumeConfig struct {
	Label            string `yaml:"label" env-default:"SQLFS"`
	TotalSpace       int64  `yaml:"total_space" env-default:"1073741824"`
	FreeSpace        int64  `yaml:"free_space" env-default:"536870912"`
	SecurityTemplate string `yaml:"security_template"`
}

type MountConfig struct {
	Mountpoint string `yaml:"mountpoint"`
	AllowOther bool   `yaml:"allow_other"`
}
