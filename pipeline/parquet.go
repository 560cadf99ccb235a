package pipeline

import (
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	fitzones "github.com/lucasjlepore/fitzones"
)

type sampleParquetRow struct {
	TSUTCISO  string  `parquet:"name=ts_utc_iso, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ElapsedS  float64 `parquet:"name=elapsed_s, type=DOUBLE"`
	HRBPM     int32   `parquet:"name=hr_bpm, type=INT32"`
	SpeedMPS  float64 `parquet:"name=speed_mps, type=DOUBLE"`
	Moving    bool    `parquet:"name=moving, type=BOOLEAN"`
	Zone      string  `parquet:"name=zone, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	SampleIdx int64   `parquet:"name=sample_index, type=INT64"`
}

// writeSamplesParquet exports the normalized series with the moving flag and
// zone each sample's outgoing interval received.
func writeSamplesParquet(path string, samples []fitzones.Sample, cfg fitzones.Config) error {
	moving, labels := fitzones.ClassifySamples(samples, cfg.Zones, cfg.MovingThresholdMPS)

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(sampleParquetRow), 4)
	if err != nil {
		_ = fw.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	var first time.Time
	if len(samples) > 0 {
		first = samples[0].Timestamp
	}
	for i, s := range samples {
		row := sampleParquetRow{
			TSUTCISO:  s.Timestamp.UTC().Format(time.RFC3339),
			ElapsedS:  s.Timestamp.Sub(first).Seconds(),
			HRBPM:     int32(s.HeartRate),
			SpeedMPS:  s.Speed,
			Moving:    moving[i],
			Zone:      labels[i],
			SampleIdx: int64(i),
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}
