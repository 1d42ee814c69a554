package storage

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// PartitionKey derives the date-partitioned object key for a batch:
// <folder>/year=<YYYY>/month=<MM>/day=<DD>/transactions-<YYYYMMDD>.<ext>
//
// The downstream pipeline routes on this exact layout, so the scheme is
// a contract, not a convention.
func PartitionKey(folder string, date time.Time, ext string) string {
	return fmt.Sprintf("%s/year=%s/month=%s/day=%s/transactions-%s.%s",
		folder,
		date.Format("2006"),
		date.Format("01"),
		date.Format("02"),
		date.Format("20060102"),
		ext,
	)
}

// ProcessedKey derives the write-back key for a raw object: the raw
// folder segment becomes the processed folder and the extension becomes
// .json.
func ProcessedKey(rawKey, rawFolder, processedFolder string) string {
	key := strings.Replace(rawKey, rawFolder, processedFolder, 1)
	key = strings.TrimSuffix(key, path.Ext(key))
	return key + ".json"
}
