package domain

import (
	"fmt"
	"strings"
)

// File naming used by the Olist public dataset dump.
const (
	DatasetFilePrefix = "olist_"
	DatasetFileSuffix = "_dataset.csv"
)

// DatasetID identifies one of the tabular sources the pipeline extracts.
type DatasetID int

const (
	Customers DatasetID = iota + 1
	Orders
	OrderItems
)

// AllDatasets is the fixed extraction set, in load order.
var AllDatasets = []DatasetID{Customers, Orders, OrderItems}

var datasetKeys = map[DatasetID]string{
	Customers:  "customers",
	Orders:     "orders",
	OrderItems: "order_items",
}

// Key returns the short logical name, e.g. "orders".
func (d DatasetID) Key() string {
	if k, ok := datasetKeys[d]; ok {
		return k
	}
	return fmt.Sprintf("dataset(%d)", int(d))
}

// FileName returns the on-disk name, e.g. "olist_orders_dataset.csv".
func (d DatasetID) FileName() string {
	return DatasetFilePrefix + d.Key() + DatasetFileSuffix
}

func (d DatasetID) String() string { return d.Key() }

// DatasetKeyFromFile strips the known prefix and suffix from a file name.
// It returns false when the name does not follow the pattern.
func DatasetKeyFromFile(fileName string) (string, bool) {
	if !strings.HasPrefix(fileName, DatasetFilePrefix) || !strings.HasSuffix(fileName, DatasetFileSuffix) {
		return "", false
	}
	key := strings.TrimSuffix(strings.TrimPrefix(fileName, DatasetFilePrefix), DatasetFileSuffix)
	if key == "" {
		return "", false
	}
	return key, true
}

// DatasetFromFile maps a file name to its DatasetID.
func DatasetFromFile(fileName string) (DatasetID, error) {
	key, ok := DatasetKeyFromFile(fileName)
	if !ok {
		return 0, fmt.Errorf("file %q does not match %s<name>%s", fileName, DatasetFilePrefix, DatasetFileSuffix)
	}
	for id, k := range datasetKeys {
		if k == key {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown dataset %q", key)
}
