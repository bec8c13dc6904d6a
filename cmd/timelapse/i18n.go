// Package main provides localization for the timelapse CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Input":    "入力",
		"Output":   "出力",
		"Video":    "動画",
		"Writer":   "書き出し",
		"Settings": "設定",
		"Debug":    "デバッグ",
		"Logging":  "ログ",

		// Root command
		"Assemble a folder of photos into a time-lapse video":                                             "フォルダ内の写真からタイムラプス動画を作成",
		"timelapse scales photos to a common frame size and writes them in order to an AVI or MP4 video.": "timelapseは写真を共通のフレームサイズに縮小し、順番にAVIまたはMP4動画へ書き出します。",

		// Create command
		"Create a time-lapse video from photos": "写真からタイムラプス動画を作成",
		"Scale the given photos, or every photo in the input folder, to one frame size and write them to a video.": "指定した写真、または入力フォルダ内の全ての写真を一つのフレームサイズに揃えて動画に書き出します。",

		// Preview command
		"Render a contact sheet of the photos in frame order":                                                  "写真をフレーム順に並べたコンタクトシートを作成",
		"Render numbered thumbnails of every readable photo to check the frame order before creating a video.": "動画作成前にフレーム順を確認できるよう、読み込める全ての写真の番号付きサムネイルを作成します。",

		// Inspect command
		"Show the stream properties of video files":                             "動画ファイルのストリーム情報を表示",
		"Read the container headers of AVI and MP4 files written by timelapse.": "timelapseが書き出したAVI・MP4ファイルのコンテナヘッダーを読み取ります。",
		"At least one video argument is required":                               "動画の引数が1つ以上必要です",

		// Formats command
		"List video formats and the writer serving each":                       "動画形式と担当するライターの一覧",
		"Show which writer backend would produce each format on this machine.": "この環境で各形式を書き出すライターを表示します。",
		"unavailable": "利用不可",

		// Version command
		"Show version information":          "バージョン情報を表示",
		"Display the version of timelapse.": "timelapseのバージョンを表示します。",
		"timelapse (Go) version %s":         "timelapse (Go版) バージョン %s",

		// Input flags
		"Folder scanned for photos when no files are given": "ファイル指定がない場合に写真を探すフォルダ",
		"Frame order for folder scans (name, modtime)":      "フォルダ内の写真の並び順（name, modtime）",

		// Output flags
		"Folder the video is written to":                         "動画の出力先フォルダ",
		"Video file name without extension (default: timestamp)": "拡張子なしの動画ファイル名（デフォルト: 日時）",
		"Video format (avi, mp4, avi(raw))":                      "動画形式（avi, mp4, avi(raw)）",
		"Show the planned video without writing it":              "動画を書き出さずに計画だけを表示",
		"Output execution summary to file (Markdown format)":     "実行サマリーをファイルに出力（Markdown形式）",
		"Contact sheet image path (.png or .jpg)":                "コンタクトシート画像のパス（.png または .jpg）",
		"Thumbnail size in pixels":                               "サムネイルのサイズ（ピクセル）",
		"Thumbnails per row":                                     "1行あたりのサムネイル数",
		"Omit frame numbers under thumbnails":                    "サムネイル下のフレーム番号を表示しない",

		// Video flags
		"Maximum frame width":                         "フレームの最大幅",
		"Maximum frame height":                        "フレームの最大高さ",
		"Frames per second":                           "フレームレート（fps）",
		"Use the first photo's size as the frame box": "最初の写真のサイズをフレームサイズとして使用",
		"Resize kernel (nearest, approx-bilinear, bilinear, catmullrom)": "縮小時の補間方式（nearest, approx-bilinear, bilinear, catmullrom）",
		"Frames decoded ahead of the writer (0 = sequential)":            "先読みしてデコードするフレーム数（0 = 逐次）",

		// Writer flags
		"Path to the ffmpeg executable (falls back to FFMPEG_PATH env, then PATH)": "ffmpeg実行ファイルのパス（未指定時は環境変数FFMPEG_PATH、次にPATH）",
		"Fail instead of writing MJPEG when ffmpeg is missing":                     "ffmpegがない場合にMJPEGで書き出さずエラーにする",
		"JPEG quality of MJPEG fallback frames (1-100)":                            "MJPEG代替出力のJPEG品質（1-100）",

		// Settings flags
		"Settings file (YAML, or TOML with a .toml extension)":   "設定ファイル（YAML、拡張子.tomlならTOML）",
		"Write the effective settings back to the settings file": "実際に使用した設定を設定ファイルに保存",

		// Debug flags
		"Keep an incomplete video when a run fails":           "失敗時に途中までの動画を残す",
		"Do not lock the output file against concurrent runs": "出力ファイルの排他ロックを行わない",
		"Directory for debug output":                          "デバッグ出力のディレクトリ",

		// Logging flags
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Suppress all log output":              "全てのログ出力を抑制",
		"Also append log lines to this file":   "ログをこのファイルにも追記",

		// Runtime messages
		"Interrupted, shutting down...":               "中断されました。終了処理中...",
		"Encoding":                                    "エンコード中",
		"Settings saved to %s":                        "設定を %s に保存しました",
		"Failed to save settings: %s":                 "設定の保存に失敗しました: %s",
		"Summary saved to %s":                         "サマリーを %s に保存しました",
		"Failed to write summary: %s":                 "サマリーの書き込みに失敗しました: %s",
		"Preview saved to %s (%d photos, %d skipped)": "プレビューを %s に保存しました（%d 枚、スキップ %d 枚）",

		// Summary content
		"Time-lapse Summary": "タイムラプスサマリー",
		"Generated at":       "生成日時",
		"Item":               "項目",
		"Value":              "値",
		"Input Folder":       "入力フォルダ",
		"Photos":             "写真枚数",
		"Video Length (sec)": "動画の長さ（秒）",
		"FPS":                "フレームレート",
		"Resolution":         "解像度",
		"Format":             "形式",
		"Frame Size":         "フレームサイズ",
		"Source Size":        "元画像サイズ",
		"Frames":             "フレーム数",
		"File Size":          "ファイルサイズ",
		"Elapsed":            "処理時間",
		"Run ID":             "実行ID",
		"fallback":           "代替",

		// Inspect and formats tables
		"File":      "ファイル",
		"Container": "コンテナ",
		"Codec":     "コーデック",
		"Duration":  "再生時間",
		"Extension": "拡張子",
	})
}
