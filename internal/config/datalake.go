package config

import "github.com/spf13/viper"

// DataLake is configuration of the lake pipeline (dl.cfg).
type DataLake struct {
	AWS AWS
	// Input is root of song_data/ and log_data/, a local directory or S3 path.
	Input string
	// Output is destination of parquet datasets, a local directory or S3 path.
	Output string
}

// LoadDataLake reads dl.cfg style INI file.
func LoadDataLake(path string) (*DataLake, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}
	return newDataLake(v), nil
}

func newDataLake(v *viper.Viper) *DataLake {
	v.SetDefault("aws.region", DefaultRegion)

	return &DataLake{
		AWS: AWS{
			AccessKeyID:     getString(v, "aws.aws_access_key_id"),
			SecretAccessKey: getString(v, "aws.aws_secret_access_key"),
			Region:          getString(v, "aws.region"),
		},
		Input:  getString(v, "data.input"),
		Output: getString(v, "data.output"),
	}
}

// Validate checks input and output are set.
func (x *DataLake) Validate() error {
	var m missingKeys
	m.check("DATA.INPUT", x.Input)
	m.check("DATA.OUTPUT", x.Output)
	return m.err()
}
