package media

import "strconv"

// scale720 bounds the frame to 1280x720 while preserving aspect ratio:
// wide sources get width 1280, tall sources get height 720, the other
// dimension follows with even alignment. Never distorts to a square.
const scale720 = "scale='if(gt(a,16/9),1280,-2)':'if(gt(a,16/9),-2,720)',setsar=1"

// RemuxArgs builds the argument list for a lossless stream copy into an mp4
// container with the moov atom up front.
func RemuxArgs(src, dst string) []string {
	return []string{
		"-y",
		"-i", src,
		"-c", "copy",
		"-movflags", "+faststart",
		dst,
	}
}

// TranscodeArgs builds the argument list for a full re-encode used when a
// damaged source refuses stream copy: h264 veryfast CRF 23, AAC 128k, frames
// bounded to 720p.
func TranscodeArgs(src, dst string) []string {
	return []string{
		"-y",
		"-i", src,
		"-vf", scale720,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		dst,
	}
}

// normalizeArgs builds the argument list RemuxInPlace uses: h264/aac mp4
// output with an optional minimum frame rate filter.
func normalizeArgs(src, dst string, minFPS int) []string {
	args := []string{"-y", "-i", src}
	if minFPS > 0 {
		args = append(args, "-vf", fpsFilter(minFPS))
		args = append(args,
			"-c:v", "libx264",
			"-preset", "veryfast",
			"-crf", "23",
			"-c:a", "aac",
			"-b:a", "128k",
		)
	} else {
		args = append(args, "-c", "copy")
	}
	return append(args, "-movflags", "+faststart", dst)
}

func fpsFilter(minFPS int) string {
	return "fps=fps=" + strconv.Itoa(minFPS)
}
