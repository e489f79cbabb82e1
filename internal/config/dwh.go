package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// AWS is access key and region.
type AWS struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// Cluster is [CLUSTER] section of dwh.cfg.
type Cluster struct {
	ClusterType string
	NumNodes    int
	NodeType    string
	Identifier  string
	DBName      string
	DBUser      string
	DBPassword  string
	DBPort      int
	IAMRoleName string
	// Host is endpoint of a provisioned cluster.
	Host string
}

// S3 is [S3] section of dwh.cfg.
type S3 struct {
	LogData     string
	LogJSONPath string
	SongData    string
}

// DWH is configuration of the cloud warehouse pipeline.
type DWH struct {
	AWS     AWS
	Cluster Cluster
	// RoleARN is [IAM_ROLE] ARN, set after provisioning.
	RoleARN string
	S3      S3
}

// LoadDWH reads dwh.cfg style INI file.
func LoadDWH(path string) (*DWH, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}
	return newDWH(v)
}

func newDWH(v *viper.Viper) (*DWH, error) {
	v.SetDefault("aws.region", DefaultRegion)
	v.SetDefault("cluster.db_port", DefaultPort)
	v.SetDefault("cluster.dwh_cluster_type", DefaultClusterType)

	numNodes, err := getInt(v, "cluster.dwh_num_nodes")
	if err != nil {
		return nil, err
	}
	port, err := getInt(v, "cluster.db_port")
	if err != nil {
		return nil, err
	}

	return &DWH{
		AWS: AWS{
			AccessKeyID:     getString(v, "aws.key"),
			SecretAccessKey: getString(v, "aws.secret"),
			Region:          getString(v, "aws.region"),
		},
		Cluster: Cluster{
			ClusterType: getString(v, "cluster.dwh_cluster_type"),
			NumNodes:    numNodes,
			NodeType:    getString(v, "cluster.dwh_node_type"),
			Identifier:  getString(v, "cluster.dwh_cluster_identifier"),
			DBName:      getString(v, "cluster.db_name"),
			DBUser:      getString(v, "cluster.db_user"),
			DBPassword:  getString(v, "cluster.db_password"),
			DBPort:      port,
			IAMRoleName: getString(v, "cluster.dwh_iam_role_name"),
			Host:        getString(v, "cluster.host"),
		},
		RoleARN: getString(v, "iam_role.arn"),
		S3: S3{
			LogData:     getString(v, "s3.log_data"),
			LogJSONPath: getString(v, "s3.log_jsonpath"),
			SongData:    getString(v, "s3.song_data"),
		},
	}, nil
}

// ValidateProvision checks keys required to create or delete the cluster.
func (x *DWH) ValidateProvision() error {
	var m missingKeys
	m.check("CLUSTER.DWH_CLUSTER_IDENTIFIER", x.Cluster.Identifier)
	m.check("CLUSTER.DWH_IAM_ROLE_NAME", x.Cluster.IAMRoleName)
	m.check("CLUSTER.DWH_NODE_TYPE", x.Cluster.NodeType)
	m.check("CLUSTER.DB_NAME", x.Cluster.DBName)
	m.check("CLUSTER.DB_USER", x.Cluster.DBUser)
	m.check("CLUSTER.DB_PASSWORD", x.Cluster.DBPassword)
	if x.Cluster.ClusterType != "single-node" && x.Cluster.NumNodes < 2 {
		m = append(m, "CLUSTER.DWH_NUM_NODES (>= 2 for multi-node)")
	}
	return m.err()
}

// ValidateDatabase checks keys required to connect the cluster database.
func (x *DWH) ValidateDatabase() error {
	var m missingKeys
	m.check("CLUSTER.HOST", x.Cluster.Host)
	m.check("CLUSTER.DB_NAME", x.Cluster.DBName)
	m.check("CLUSTER.DB_USER", x.Cluster.DBUser)
	m.check("CLUSTER.DB_PASSWORD", x.Cluster.DBPassword)
	return m.err()
}

// ValidateLoad checks keys required by COPY into staging tables.
func (x *DWH) ValidateLoad() error {
	var m missingKeys
	m.check("IAM_ROLE.ARN", x.RoleARN)
	m.check("S3.LOG_DATA", x.S3.LogData)
	m.check("S3.SONG_DATA", x.S3.SongData)
	return m.err()
}

// DSN returns lib/pq connection string of the cluster database. Redshift
// requires SSL.
func (x *DWH) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=require",
		x.Cluster.Host, x.Cluster.DBPort, x.Cluster.DBName, x.Cluster.DBUser, x.Cluster.DBPassword)
}
