package encoder

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// HWAccelType represents a hardware acceleration type
type HWAccelType string

const (
	HWAccelNone         HWAccelType = "none"         // Software encoding (libx264)
	HWAccelAuto         HWAccelType = "auto"         // Auto-detect best available
	HWAccelNVENC        HWAccelType = "nvenc"        // NVIDIA NVENC
	HWAccelQSV          HWAccelType = "qsv"          // Intel Quick Sync Video
	HWAccelVAAPI        HWAccelType = "vaapi"        // VA-API (AMD, Intel, older hardware)
	HWAccelVulkan       HWAccelType = "vulkan"       // Vulkan Video
	HWAccelVideoToolbox HWAccelType = "videotoolbox" // Apple VideoToolbox (macOS)
)

// vaapiDevice is the render node VA-API encoders are opened on.
const vaapiDevice = "/dev/dri/renderD128"

// HWEncoder represents a detected hardware encoder
type HWEncoder struct {
	Name        string      // Encoder name (e.g., "h264_nvenc")
	Type        HWAccelType // Hardware acceleration type
	Available   bool        // Whether a probe encode succeeded
	Description string      // Human-readable description
}

// encoderSpec defines a hardware encoder configuration for priority lists
type encoderSpec struct {
	name      string
	accelType HWAccelType
	desc      string
}

// linuxEncoderPriority defines the encoder preference order for Linux
// Priority: nvenc > qsv > vaapi > vulkan > software
var linuxEncoderPriority = []encoderSpec{
	{"h264_nvenc", HWAccelNVENC, "NVIDIA NVENC"},
	{"h264_qsv", HWAccelQSV, "Intel Quick Sync Video"},
	{"h264_vaapi", HWAccelVAAPI, "VA-API"},
	{"h264_vulkan", HWAccelVulkan, "Vulkan Video"},
}

// macOSEncoderPriority defines the encoder preference order for macOS
var macOSEncoderPriority = []encoderSpec{
	{"h264_videotoolbox", HWAccelVideoToolbox, "Apple VideoToolbox"},
}

// ValidHWAccel reports whether s names a known acceleration type.
func ValidHWAccel(s string) bool {
	switch HWAccelType(s) {
	case HWAccelNone, HWAccelAuto, HWAccelNVENC, HWAccelQSV, HWAccelVAAPI,
		HWAccelVulkan, HWAccelVideoToolbox:
		return true
	}
	return false
}

// videoCodecArgs returns the output codec arguments for enc, including the
// overwrite flag. nil selects the default libx264 settings.
func videoCodecArgs(enc *HWEncoder) []string {
	if enc == nil {
		return []string{"-preset", "fast", "-y", "-pix_fmt", "yuv420p", "-crf", "21"}
	}

	switch enc.Type {
	case HWAccelVAAPI, HWAccelVulkan:
		return []string{"-y", "-vf", "format=nv12,hwupload", "-c:v", enc.Name}
	case HWAccelQSV:
		return []string{"-y", "-pix_fmt", "nv12", "-c:v", enc.Name}
	default:
		return []string{"-y", "-pix_fmt", "yuv420p", "-c:v", enc.Name}
	}
}

// deviceArgs returns input-side arguments some encoders need before -i.
func deviceArgs(enc *HWEncoder) []string {
	if enc == nil {
		return nil
	}
	switch enc.Type {
	case HWAccelVAAPI:
		return []string{"-vaapi_device", vaapiDevice}
	case HWAccelVulkan:
		return []string{"-init_hw_device", "vulkan", "-filter_hw_device", "vulkan0"}
	}
	return nil
}

// probeArgs builds a tiny lavfi encode that fails unless the encoder opens.
func probeArgs(enc encoderSpec) []string {
	e := &HWEncoder{Name: enc.name, Type: enc.accelType}
	args := []string{"-hide_banner", "-loglevel", "error"}
	args = append(args, deviceArgs(e)...)
	args = append(args, "-f", "lavfi", "-i", "color=black:s=256x256:d=0.1")
	args = append(args, videoCodecArgs(e)...)
	return append(args, "-f", "null", "-")
}

// testEncoderAvailable attempts a short encode with the named encoder. This
// catches both ffmpeg builds without the encoder and machines without the
// hardware behind it.
func testEncoderAvailable(ctx context.Context, ffmpegPath string, enc encoderSpec) bool {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffmpegPath, probeArgs(enc)...)
	// Silence libva, which logs to stderr on its own
	cmd.Env = append(os.Environ(), "LIBVA_MESSAGING_LEVEL=0")
	return cmd.Run() == nil
}

func encoderPriority() []encoderSpec {
	switch runtime.GOOS {
	case "darwin":
		return macOSEncoderPriority
	default: // Linux and others
		return linuxEncoderPriority
	}
}

// DetectHWEncoders probes for available hardware encoders
// Returns a list of detected encoders in priority order
func DetectHWEncoders(ctx context.Context, ffmpegPath string) []HWEncoder {
	var encoders []HWEncoder
	for _, enc := range encoderPriority() {
		encoders = append(encoders, HWEncoder{
			Name:        enc.name,
			Type:        enc.accelType,
			Description: enc.desc,
			Available:   testEncoderAvailable(ctx, ffmpegPath, enc),
		})
	}
	return encoders
}

// SelectBestEncoder returns the best available encoder based on priority
// If requestedType is HWAccelAuto, it selects the first available hardware encoder
// If requestedType is HWAccelNone, it returns nil (use software)
// Otherwise, it attempts to use the requested type if available
func SelectBestEncoder(ctx context.Context, ffmpegPath string, requestedType HWAccelType) *HWEncoder {
	if requestedType == HWAccelNone || requestedType == "" {
		return nil
	}

	encoders := DetectHWEncoders(ctx, ffmpegPath)

	if requestedType == HWAccelAuto {
		for i := range encoders {
			if encoders[i].Available {
				return &encoders[i]
			}
		}
		return nil
	}

	for i := range encoders {
		if encoders[i].Type == requestedType {
			if encoders[i].Available {
				return &encoders[i]
			}
			return nil
		}
	}

	return nil
}

// GetEncoderStatus returns a human-readable status of all hardware encoders
func GetEncoderStatus(ctx context.Context, ffmpegPath string) string {
	var sb strings.Builder
	sb.WriteString("Hardware Encoder Status:\n")

	for _, enc := range DetectHWEncoders(ctx, ffmpegPath) {
		status := "not available"
		if enc.Available {
			status = "available"
		}
		sb.WriteString("  ")
		sb.WriteString(enc.Description)
		sb.WriteString(" (")
		sb.WriteString(enc.Name)
		sb.WriteString("): ")
		sb.WriteString(status)
		sb.WriteString("\n")
	}

	return sb.String()
}
