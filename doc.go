// Package lakes contains the core contracts and table schema for the dengr
// data lake ETL job: a single-shot batch pipeline which reads raw song
// catalog and play-event records (line-delimited JSON in an object store or
// on local disk) and lays them out as a partitioned parquet star schema.
//
// The pipeline is assembled from four kinds of pieces, each with a basic
// contract defined in this package and concrete implementations in
// sub-packages:
//
// 1. RawSource
//
//    A RawSource enumerates the raw objects under some location - an S3
//    prefix (aws/s3), or a directory tree (file) - and hands them out one
//    reader at a time. It knows nothing about the bytes it carries; decoding
//    is the next stage's job, so the same decoding code serves every
//    backend.
//
// 2. Decoding and coercion
//
//    The json sub-package turns a reader full of line-delimited JSON into
//    one record map per line. The sparkify use case coerces those maps into
//    the typed raw records in this package (SongRecord, LogRecord). A record
//    which cannot be coerced is a SchemaMismatch: by default it is skipped
//    and counted, never silently dropped.
//
// 3. Builders
//
//    Pure functions over slices of raw records produce the five analytical
//    tables: songs, artists, users and time dimensions, and the songplays
//    fact table. All duplicate resolution and surrogate key assignment is
//    deterministic, so rerunning the job on the same input yields identical
//    tables.
//
// 4. Destination and the partitioned writer
//
//    A Destination is a flat keyed blob store (S3 prefix or directory). The
//    parquet sub-package writes each table beneath it under hive-style
//    partition paths, replacing any partition it touches wholesale.
//
// The usecase/sparkify package wires the stages together and cmd exposes
// them as a CLI.
package lakes
