// Package encode turns a still image and an audio file into an MP4 video by
// driving an external ffmpeg binary.
//
// The Encoder validates both inputs, probes the audio with ffprobe to learn
// its duration and tags, then runs a fixed ffmpeg pipeline that loops the
// image for the length of the audio. flac and wav sources are re-encoded to
// MP3 because MP4 containers with those codecs are poorly supported by
// upload targets; everything else is carried as AAC.
package encode
