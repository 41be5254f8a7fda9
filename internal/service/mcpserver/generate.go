package mcpserver

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/reusedev/draw-mcp/config"
	"github.com/reusedev/draw-mcp/internal/components/mysql"
	"github.com/reusedev/draw-mcp/internal/consts"
	"github.com/reusedev/draw-mcp/internal/modules/dao"
	"github.com/reusedev/draw-mcp/internal/modules/logs"
	"github.com/reusedev/draw-mcp/internal/modules/mcp"
	"github.com/reusedev/draw-mcp/internal/modules/model"
	"github.com/reusedev/draw-mcp/internal/modules/provider"
	"github.com/reusedev/draw-mcp/internal/modules/storage/ali"
	"github.com/reusedev/draw-mcp/internal/modules/storage/local"
	"github.com/reusedev/draw-mcp/tools"
)

func (c *Core) generateImage(ctx context.Context, sessionID string, args map[string]any) *mcp.CallToolResult {
	prompt := strings.TrimSpace(stringArg(args, "prompt"))
	if prompt == "" {
		return mcp.ErrorResult(consts.ErrInvalidParameters,
			"Parameter 'prompt' is required",
			map[string]any{"parameter": "prompt"}).BuildCallResult(false)
	}
	compression, ok := compressionArg(args)
	if !ok {
		return mcp.ErrorResult(consts.ErrInvalidParameters,
			"Invalid OpenAI output_compression. Expected integer between 0 and 100.",
			map[string]any{"parameter": "output_compression"}).BuildCallResult(false)
	}

	req := provider.GenerateRequest{
		Prompt:            prompt,
		Provider:          stringArg(args, "provider"),
		Style:             stringArg(args, "style"),
		Resolution:        stringArg(args, "resolution"),
		NegativePrompt:    stringArg(args, "negative_prompt"),
		Background:        stringArg(args, "background"),
		OutputFormat:      stringArg(args, "output_format"),
		OutputCompression: compression,
		Moderation:        stringArg(args, "moderation"),
	}

	cfg := config.GConfig
	mgr := c.Manager()
	chosen, style, resolution, fail := mgr.ResolveRequest(req)
	if fail != nil {
		return mcp.ErrorResult(fail.Code, fail.Message, fail.Details).BuildCallResult(false)
	}
	c.notifySession(sessionID, "info", map[string]any{
		"event":      "generation_started",
		"provider":   chosen.Name().String(),
		"style":      style,
		"resolution": resolution,
	})
	logs.Logger.Info().
		Str("provider", chosen.Name().String()).
		Str("style", style).
		Str("resolution", resolution).
		Int("prompt_len", len(prompt)).
		Msg("generation started")

	genCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.RequestTimeout)*time.Second)
	defer cancel()
	res, fail := mgr.Generate(genCtx, req)
	if fail != nil {
		c.notifySession(sessionID, "error", map[string]any{
			"event":    "generation_failed",
			"provider": chosen.Name().String(),
			"code":     fail.Code.String(),
			"message":  fail.Message,
		})
		logs.Logger.Error().
			Str("provider", chosen.Name().String()).
			Str("code", fail.Code.String()).
			Msg(fail.Message)
		return mcp.ErrorResult(fail.Code, fail.Message, fail.Details).BuildCallResult(false)
	}

	image, buildFail := c.buildImage(ctx, res, stringArg(args, "file_prefix"), prompt)
	if buildFail != nil {
		return buildFail.BuildCallResult(false)
	}
	c.notifySession(sessionID, "info", map[string]any{
		"event":      "generation_completed",
		"image_id":   image.Id,
		"size_bytes": image.SizeBytes,
	})
	logs.Logger.Info().
		Str("image_id", image.Id).
		Str("provider", image.Provider).
		Int("size_bytes", image.SizeBytes).
		Msg("generation completed")
	return mcp.SuccessResult(*image).BuildCallResult(false)
}

// buildImage turns a provider result into the persisted image record:
// decode, save to the local image dir, derive the public URL, mirror to
// OSS when configured, then register the record and the history row.
// Persistence failures degrade the result instead of failing it.
func (c *Core) buildImage(ctx context.Context, res *provider.GenerateResult, filePrefix, prompt string) (*mcp.ImageInfo, *mcp.ToolResult) {
	data, err := base64.StdEncoding.DecodeString(res.B64)
	if err != nil {
		return nil, mcp.ErrorResult(consts.ErrDecodeFailed,
			fmt.Sprintf("Failed to decode image content: %s", err),
			map[string]any{"provider": res.Provider.String()})
	}

	cfg := config.GConfig
	timestamp := time.Now().Unix()
	ext := mcp.ExtensionForMime(res.MimeType)
	id := fmt.Sprintf("img_%s_%d", res.Provider, timestamp)
	fileName := id + "." + ext
	if prefix := sanitizePrefix(filePrefix); prefix != "" {
		fileName = fmt.Sprintf("%s_%s_%d.%s", prefix, res.Provider, timestamp, ext)
	}

	image := &mcp.ImageInfo{
		Id:            id,
		Provider:      res.Provider.String(),
		MimeType:      res.MimeType,
		SizeBytes:     len(data),
		RevisedPrompt: res.RevisedPrompt,
		Base64Data:    res.B64,
	}

	localPath := filepath.Join(c.imageDir, fileName)
	if err = local.Save(localPath, data); err != nil {
		msg := fmt.Sprintf("Failed to save image: %s", err)
		image.SaveError = &msg
		logs.Logger.Error().Str("path", localPath).Err(err).Msg("save image failed")
	} else {
		abs, absErr := filepath.Abs(localPath)
		if absErr != nil {
			abs = localPath
		}
		image.FileName = &fileName
		image.LocalPath = &abs
		if u, ok := tools.PublicImageURL(cfg.PublicBaseURL, cfg.Host, cfg.Port, fileName); ok {
			image.URL = &u
		}
		c.writeThumbnail(image, data, fileName, ext)
	}

	if ali.Enabled() {
		if ossURL, ossErr := ali.OssClient.UploadImage(ctx, data, ext, res.MimeType); ossErr != nil {
			logs.Logger.Error().Err(ossErr).Msg("oss upload failed")
		} else {
			image.URL = &ossURL
		}
	}

	if err = c.records.Put(*image); err != nil {
		logs.Logger.Error().Str("image_id", id).Err(err).Msg("record image failed")
	}
	c.writeHistory(image, res, prompt)
	return image, nil
}

func (c *Core) writeThumbnail(image *mcp.ImageInfo, data []byte, fileName, ext string) {
	cfg := config.GConfig
	if !cfg.ThumbnailEnable {
		return
	}
	thumb, err := tools.Thumbnail(data, cfg.ThumbnailRatio)
	if err != nil {
		logs.Logger.Warn().Str("image_id", image.Id).Err(err).Msg("thumbnail generation failed")
		return
	}
	thumbName := strings.TrimSuffix(fileName, "."+ext) + "_thumb.jpg"
	if err = local.Save(filepath.Join(c.imageDir, thumbName), thumb); err != nil {
		logs.Logger.Warn().Str("image_id", image.Id).Err(err).Msg("thumbnail save failed")
		return
	}
	if u, ok := tools.PublicImageURL(cfg.PublicBaseURL, cfg.Host, cfg.Port, thumbName); ok {
		image.ThumbnailURL = &u
	}
}

func (c *Core) writeHistory(image *mcp.ImageInfo, res *provider.GenerateResult, prompt string) {
	if !mysql.Enabled() {
		return
	}
	row := &model.GenerationImage{
		ImageId:    image.Id,
		Provider:   image.Provider,
		Model:      res.Model,
		Prompt:     prompt,
		Style:      res.Style,
		Resolution: res.Resolution,
		MimeType:   image.MimeType,
		SizeBytes:  image.SizeBytes,
	}
	if image.FileName != nil {
		row.FileName = sql.NullString{String: *image.FileName, Valid: true}
	}
	if image.URL != nil {
		row.URL = sql.NullString{String: *image.URL, Valid: true}
	}
	if image.RevisedPrompt != nil {
		row.RevisedPrompt = sql.NullString{String: *image.RevisedPrompt, Valid: true}
	}
	if err := dao.CreateGenerationImage(row); err != nil {
		logs.Logger.Error().Str("image_id", image.Id).Err(err).Msg("failed to write generation history")
	}
}

// sanitizePrefix keeps letters, digits and underscores from the
// caller-supplied filename prefix; everything else becomes an underscore.
func sanitizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range prefix {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
