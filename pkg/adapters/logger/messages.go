package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Starting run %s": "実行 %s を開始します",
		"Resolved frame size %s from %s (target %s)":      "フレームサイズを %s に決定しました (元画像 %s, 指定 %s)",
		"Encoding %d frames at %.2f fps as %s (codec %s)": "%d フレームを %.2f fps の %s (コーデック %s) でエンコード中",
		"Unknown format %q, using %s":                     "不明な形式 %q のため %s を使用します",
		"Output saved to %s":                              "出力を %s に保存しました",
		"Interrupted, shutting down...":                   "中断されました。終了処理中...",
		"Found %d images in %s":                           "%[2]s で %[1]d 枚の画像が見つかりました",
		"Using photo size %dx%d from %s":                  "%[3]s の画像サイズ %[1]dx%[2]d を使用します",

		// Resolve stage
		"Reference image %s is %s (%s)":        "基準画像 %s は %s (%s) です",
		"Resolved frame size %s for target %s": "指定 %[2]s に対してフレームサイズ %[1]s を決定しました",

		// Encode stage
		"Writer opened: %s backend, codec %s, %s at %.2f fps": "ライター作成: %s バックエンド, コーデック %s, %s, %.2f fps",
		"Appended frame %d/%d: %s":                            "フレーム追加 %d/%d: %s",
		"Encoded %d frames into %s":                           "%d フレームを %s にエンコードしました",
		"Failed to save debug frame %d: %s":                   "デバッグ用フレーム %d の保存に失敗しました: %s",
		"Failed to save resolved dimensions: %s":              "決定したフレームサイズの保存に失敗しました: %s",
		"Removed partial output %s":                           "途中までの出力 %s を削除しました",

		// Preview stage
		"Rendering %d thumbnails with %d workers": "%d 枚のサムネイルを %d ワーカーで作成中",
		"Contact sheet rendered: %dx%d":           "コンタクトシートを作成しました: %dx%d",

		// Writers
		"ffmpeg not available, writing MJPEG instead of %s": "ffmpeg が見つからないため %s の代わりに MJPEG で書き出します",
		"Frame rate %.2f rounded to %d for MJPEG output":    "MJPEG 出力のためフレームレート %.2f を %d に丸めました",

		// Warnings
		"Failed to close writer after error: %s":          "エラー後のライターのクローズに失敗しました: %s",
		"Failed to release output lock: %s":               "出力ロックの解放に失敗しました: %s",
		"Failed to remove partial output %s: %s":          "途中までの出力 %s の削除に失敗しました: %s",
		"Run cancelled after %d frames":                   "%d フレームで実行がキャンセルされました",
		"Skipping %s: not a readable image":               "%s をスキップします: 読み込める画像ではありません",
		"Settings file %s is invalid, using defaults: %s": "設定ファイル %s が不正なため既定値を使用します: %s",

		// Errors
		"Invalid configuration: %s":          "設定が不正です: %s",
		"Failed to resolve dimensions: %s":   "フレームサイズの決定に失敗しました: %s",
		"Failed to encode video: %s":         "動画のエンコードに失敗しました: %s",
		"Failed to write output: %s":         "出力の書き込みに失敗しました: %s",
		"Output %s is in use by another run": "出力 %s は別の実行で使用中です",
	})
}
